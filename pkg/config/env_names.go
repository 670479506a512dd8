package config

// EnvPrefix is empty because every variable already carries the product prefix.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv           = "KIRANAKART_APP_ENV"
	EnvPort             = "KIRANAKART_APP_PORT"
	EnvRedisURL         = "KIRANAKART_REDIS_URL"
	EnvBackendURL       = "KIRANAKART_BACKEND_URL"
	EnvBackendAPIKey    = "KIRANAKART_BACKEND_API_KEY"
	EnvMapsAPIKey       = "KIRANAKART_MAPS_API_KEY"
	EnvSessionJWTSecret = "KIRANAKART_SESSION_JWT_SECRET"
)
