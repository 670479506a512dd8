package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Redis        RedisConfig
	Backend      BackendConfig
	Maps         MapsConfig
	Session      SessionConfig
	LocationFlow LocationFlowConfig
	Checkout     CheckoutConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KIRANAKART_APP_ENV" required:"true"`
	Port         string `envconfig:"KIRANAKART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KIRANAKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KIRANAKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"KIRANAKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KIRANAKART_REDIS_ADDR"`
	Password     string        `envconfig:"KIRANAKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"KIRANAKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KIRANAKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KIRANAKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KIRANAKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KIRANAKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KIRANAKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BackendConfig points at the hosted data platform that owns tables,
// auth, and callable functions.
type BackendConfig struct {
	BaseURL        string        `envconfig:"KIRANAKART_BACKEND_URL" required:"true"`
	APIKey         string        `envconfig:"KIRANAKART_BACKEND_API_KEY" required:"true"`
	RequestTimeout time.Duration `envconfig:"KIRANAKART_BACKEND_TIMEOUT" default:"10s"`
}

type MapsConfig struct {
	APIKey  string `envconfig:"KIRANAKART_MAPS_API_KEY" required:"true"`
	BaseURL string `envconfig:"KIRANAKART_MAPS_BASE_URL"`
	Region  string `envconfig:"KIRANAKART_MAPS_REGION" default:"IN"`
}

type SessionConfig struct {
	JWTSecret string        `envconfig:"KIRANAKART_SESSION_JWT_SECRET" required:"true"`
	CookieTTL time.Duration `envconfig:"KIRANAKART_SESSION_COOKIE_TTL" default:"720h"`
	StateTTL  time.Duration `envconfig:"KIRANAKART_SESSION_STATE_TTL" default:"720h"`
}

type LocationFlowConfig struct {
	DebounceInterval   time.Duration `envconfig:"KIRANAKART_LOCATION_DEBOUNCE" default:"300ms"`
	CenterEpsilon      float64       `envconfig:"KIRANAKART_LOCATION_CENTER_EPSILON" default:"0.000001"`
	GeolocateTimeout   time.Duration `envconfig:"KIRANAKART_GEOLOCATE_TIMEOUT" default:"10s"`
	GeolocateCacheTTL  time.Duration `envconfig:"KIRANAKART_GEOLOCATE_CACHE_TTL" default:"3m"`
	ReverseGeocodeWait time.Duration `envconfig:"KIRANAKART_REVERSE_GEOCODE_TIMEOUT" default:"8s"`
}

type CheckoutConfig struct {
	FallbackMinOrderValue     string `envconfig:"KIRANAKART_FALLBACK_MIN_ORDER_VALUE" default:"200.00"`
	FallbackDeliveryCharge    string `envconfig:"KIRANAKART_FALLBACK_DELIVERY_CHARGE" default:"40.00"`
	FallbackCurrencySymbol    string `envconfig:"KIRANAKART_CURRENCY_SYMBOL" default:"₹"`
	InstantDeliveryOptionCode string `envconfig:"KIRANAKART_INSTANT_DELIVERY_CODE" default:"instant"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"KIRANAKART_CORS_ORIGINS" default:"http://localhost:3000"`
}
