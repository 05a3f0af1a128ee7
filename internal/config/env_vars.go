package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portKey         = "port"
	appNameKey      = "app_name"
	envKey          = "env"
	apiPrefixKey    = "api_prefix"
	baseURLKey      = "base_url"
	demoPasswordKey = "demo_user_password"
)

func setServerDefaults(v *viper.Viper) {
	v.SetDefault(portKey, "3000")
	v.SetDefault(appNameKey, "Campus API")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(apiPrefixKey, "/api")
	v.SetDefault(baseURLKey, "http://localhost:3000")
	v.SetDefault(demoPasswordKey, "")

	v.SetDefault(jwtSecretKey, defaultJWTSecret)
	v.SetDefault(issuerKey, "campus-api")
	v.SetDefault(accessTokenExpiryKey, "24h")
	v.SetDefault(loginRateLimitKey, 5.0)
	v.SetDefault(loginRateBurstKey, 10)
	v.SetDefault(rateLimitingKey, true)

	v.SetDefault(allowedOriginsKey, "http://localhost:5173")
}

func (c *Settings) GetPort() string {
	port := c.v.GetString(portKey)
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c *Settings) GetAppName() string {
	return c.v.GetString(appNameKey)
}

// GetEnv returns DEV, TEST or PROD. Anything unset is DEV.
func (c *Settings) GetEnv() string {
	env := strings.ToUpper(c.v.GetString(envKey))
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIPrefix returns the path every API route is mounted under, e.g. "/api".
func (c *Settings) GetAPIPrefix() string {
	prefix := strings.TrimRight(c.v.GetString(apiPrefixKey), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

// GetBaseURL returns the public URL of the backend (e.g. "http://localhost:3000")
func (c *Settings) GetBaseURL() string {
	return strings.TrimRight(c.v.GetString(baseURLKey), "/")
}

// GetDemoUserPassword is the password of the seeded demo student. Empty means generate one.
func (c *Settings) GetDemoUserPassword() string {
	return c.v.GetString(demoPasswordKey)
}
