package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Catalog      CatalogConfig
	Store        StoreConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ROSEMA_APP_ENV" required:"true"`
	Port         string `envconfig:"ROSEMA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ROSEMA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROSEMA_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the storefront and admin panel origins allowed to call the API.
	CORSOrigins []string `envconfig:"ROSEMA_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ROSEMA_DB_DSN"`
	Driver string `envconfig:"ROSEMA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ROSEMA_DB_HOST"`
	LegacyPort     int    `envconfig:"ROSEMA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ROSEMA_DB_USER"`
	LegacyPassword string `envconfig:"ROSEMA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ROSEMA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ROSEMA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROSEMA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROSEMA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROSEMA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROSEMA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"ROSEMA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ROSEMA_REDIS_ADDR"`
	Password     string        `envconfig:"ROSEMA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROSEMA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROSEMA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROSEMA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROSEMA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROSEMA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROSEMA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ROSEMA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ROSEMA_AUTO_MIGRATE" default:"false"`
}

// CartConfig tunes how cart and register state is kept between requests.
type CartConfig struct {
	StateTTL         time.Duration `envconfig:"ROSEMA_CART_STATE_TTL" default:"720h"`
	SessionCacheSize int           `envconfig:"ROSEMA_CART_SESSION_CACHE_SIZE" default:"1024"`
	SessionHeader    string        `envconfig:"ROSEMA_CART_SESSION_HEADER" default:"X-Cart-Session"`
}

type CatalogConfig struct {
	SearchLimit       int `envconfig:"ROSEMA_CATALOG_SEARCH_LIMIT" default:"5"`
	LowStockThreshold int `envconfig:"ROSEMA_CATALOG_LOW_STOCK_THRESHOLD" default:"5"`
}

// StoreConfig describes the shop printed on receipts and order messages.
type StoreConfig struct {
	Name          string `envconfig:"ROSEMA_STORE_NAME" default:"Rosema"`
	WhatsAppPhone string `envconfig:"ROSEMA_STORE_WHATSAPP_PHONE" default:"5492604381502"`
	PickupAddress string `envconfig:"ROSEMA_STORE_PICKUP_ADDRESS" default:"Salto de las Rosas, Mendoza AR"`
	OpeningHours  string `envconfig:"ROSEMA_STORE_OPENING_HOURS" default:"Lunes a Sábado 9:00 a 13:00 y 17:00 a 21:00"`
	Currency      string `envconfig:"ROSEMA_STORE_CURRENCY" default:"ARS"`
	Locale        string `envconfig:"ROSEMA_STORE_LOCALE" default:"es-AR"`
	// Timezone sets the calendar months used by the dashboard.
	Timezone string `envconfig:"ROSEMA_STORE_TIMEZONE" default:"America/Argentina/Mendoza"`
}

// Location resolves Timezone.
func (s StoreConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("store timezone: %w", err)
	}
	return loc, nil
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"ROSEMA_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"ROSEMA_METRICS_PATH" default:"/metrics"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = "sqlite"
		if db.DSN == "" {
			db.DSN = "file:rosema.db?cache=shared"
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
