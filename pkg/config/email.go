package config

// EmailConfig holds SMTP configuration for outbound notification email
type EmailConfig struct {
	// Host empty means email delivery is disabled
	Host     string `env:"ORG_SMTP_HOST" env-default:""`
	Port     int    `env:"ORG_SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"ORG_SMTP_TLS" env-default:"false"`
	Username string `env:"ORG_SMTP_USERNAME" env-default:""`
	Password string `env:"ORG_SMTP_PASSWORD" env-default:""`
	From     string `env:"ORG_SMTP_FROM" env-default:"no-reply@example.com"`
	// Base URL used to build verification links
	BaseURL string `env:"ORG_BASE_URL" env-default:"http://localhost:4000"`
}
