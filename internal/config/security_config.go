package config

import "time"

const (
	jwtSecretKey         = "jwt_secret"
	issuerKey            = "jwt_issuer"
	accessTokenExpiryKey = "access_token_expiry"
	loginRateLimitKey    = "login_rate_limit"
	loginRateBurstKey    = "login_rate_burst"
	rateLimitingKey      = "enable_rate_limiting"

	defaultJWTSecret = "dev-secret-change-in-production"
)

func (c *Settings) GetJWTSecret() string {
	return c.v.GetString(jwtSecretKey)
}

// UsingDefaultSecret is true when JWT_SECRET was never set.
func (c *Settings) UsingDefaultSecret() bool {
	return c.GetJWTSecret() == defaultJWTSecret
}

func (c *Settings) GetIssuer() string {
	return c.v.GetString(issuerKey)
}

func (c *Settings) GetAccessTokenExpiry() time.Duration {
	if d := c.v.GetDuration(accessTokenExpiryKey); d > 0 {
		return d
	}
	return 24 * time.Hour
}

// GetLoginRateLimit is the sustained requests per second allowed per IP on login and register.
func (c *Settings) GetLoginRateLimit() float64 {
	return c.v.GetFloat64(loginRateLimitKey)
}

func (c *Settings) GetLoginRateBurst() int {
	return c.v.GetInt(loginRateBurstKey)
}

func (c *Settings) GetEnableRateLimiting() bool {
	return c.v.GetBool(rateLimitingKey)
}
