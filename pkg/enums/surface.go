package enums

import "fmt"

// Surface identifies which selling surface owns a cart engine.
type Surface string

const (
	SurfaceStorefront Surface = "storefront"
	SurfaceRegister   Surface = "register"
)

var validSurfaces = []Surface{
	SurfaceStorefront,
	SurfaceRegister,
}

// String implements fmt.Stringer.
func (s Surface) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Surface.
func (s Surface) IsValid() bool {
	for _, candidate := range validSurfaces {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSurface converts raw input into a Surface.
func ParseSurface(value string) (Surface, error) {
	for _, candidate := range validSurfaces {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid surface %q", value)
}
