package config

const (
	EnvPrefix = "ROSEMA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "ROSEMA_APP_ENV"
	EnvPort         = "ROSEMA_APP_PORT"
	EnvLogLevel     = "ROSEMA_LOG_LEVEL"
	EnvLogWarnStack = "ROSEMA_LOG_WARN_STACK"
	EnvCORSOrigins  = "ROSEMA_CORS_ORIGINS"

	EnvDBDSN      = "ROSEMA_DB_DSN"
	EnvDBDriver   = "ROSEMA_DB_DRIVER"
	EnvDBHost     = "ROSEMA_DB_HOST"
	EnvDBPort     = "ROSEMA_DB_PORT"
	EnvDBUser     = "ROSEMA_DB_USER"
	EnvDBPassword = "ROSEMA_DB_PASSWORD"
	EnvDBName     = "ROSEMA_DB_NAME"
	EnvDBSSLMode  = "ROSEMA_DB_SSLMODE"

	EnvRedisURL = "ROSEMA_REDIS_URL"

	EnvUseSQLite   = "ROSEMA_USE_SQLITE"
	EnvAutoMigrate = "ROSEMA_AUTO_MIGRATE"

	EnvCartStateTTL         = "ROSEMA_CART_STATE_TTL"
	EnvCartSessionCacheSize = "ROSEMA_CART_SESSION_CACHE_SIZE"
	EnvCartSessionHeader    = "ROSEMA_CART_SESSION_HEADER"

	EnvCatalogSearchLimit       = "ROSEMA_CATALOG_SEARCH_LIMIT"
	EnvCatalogLowStockThreshold = "ROSEMA_CATALOG_LOW_STOCK_THRESHOLD"

	EnvStoreName          = "ROSEMA_STORE_NAME"
	EnvStoreWhatsAppPhone = "ROSEMA_STORE_WHATSAPP_PHONE"
	EnvStorePickupAddress = "ROSEMA_STORE_PICKUP_ADDRESS"
	EnvStoreOpeningHours  = "ROSEMA_STORE_OPENING_HOURS"
	EnvStoreCurrency      = "ROSEMA_STORE_CURRENCY"
	EnvStoreLocale        = "ROSEMA_STORE_LOCALE"

	EnvMetricsEnabled = "ROSEMA_METRICS_ENABLED"
	EnvMetricsPath    = "ROSEMA_METRICS_PATH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
