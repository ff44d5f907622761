package config

// ServiceConfig holds process-wide settings
type ServiceConfig struct {
	// Environment gates error-response verbosity; "production" withholds
	// contextual error data
	Environment string `env:"ORG_ENV" env-default:"development"`
	// CryptoSecret keys the credential encryption primitive; the runtime
	// key is derived from it by one-way hash
	CryptoSecret string `env:"ORG_CRYPTO_SECRET" env-default:"very-secure-crypto-secret"`
}
