package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Has reports whether the variable is set to a non-empty value.
func Has(key string) bool {
	return os.Getenv(key) != ""
}
