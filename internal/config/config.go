package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is everything the reference backend reads at start up.
type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetAPIPrefix() string
	GetBaseURL() string
	GetDemoUserPassword() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type SecurityConfig interface {
	GetJWTSecret() string
	GetIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetLoginRateLimit() float64
	GetLoginRateBurst() int
	GetEnableRateLimiting() bool
}

// Settings is the viper backed implementation of Config and ClientConfig.
type Settings struct {
	v *viper.Viper
}

// Option adjusts the viper instance before it is read, mainly for tests.
type Option func(v *viper.Viper)

// WithValues presets keys, overriding defaults, env and file.
func WithValues(values map[string]any) Option {
	return func(v *viper.Viper) {
		for k, val := range values {
			v.Set(k, val)
		}
	}
}

// WithConfigFile reads the given TOML file in addition to the environment.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) {
		v.SetConfigFile(path)
	}
}

// New loads a .env file when present (ENV_FILE overrides the name), then
// layers defaults, an optional config file and environment variables.
func New(options ...Option) *Settings {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	setServerDefaults(v)
	setClientDefaults(v)

	v.SetConfigType("toml")
	if path := os.Getenv("CAMPUS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, opt := range options {
		opt(v)
	}

	// A missing or unreadable config file leaves defaults and env in place
	_ = v.ReadInConfig()

	return &Settings{v: v}
}

var (
	_ Config       = (*Settings)(nil)
	_ ClientConfig = (*Settings)(nil)
)
