package config

import "time"

// JwtConfig holds token signing and authenticator configuration
type JwtConfig struct {
	Secret string `env:"ORG_JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer string `env:"ORG_JWT_ISSUER" env-default:"simple-org"`
	// Expiry of issued access tokens
	ExpiryMinutes int `env:"ORG_JWT_EXPIRY_MINUTES" env-default:"60"`
	// When true the authenticator falls back to direct token verification
	// if the session lookup fails
	TokenFallback bool `env:"ORG_AUTH_TOKEN_FALLBACK" env-default:"true"`
}

// Expiry returns the access token lifetime as a duration
func (j JwtConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryMinutes) * time.Minute
}
