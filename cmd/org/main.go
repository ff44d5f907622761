package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/auth"
	"github.com/tendant/simple-org/pkg/config"
	"github.com/tendant/simple-org/pkg/crypto"
	"github.com/tendant/simple-org/pkg/notification"
	"github.com/tendant/simple-org/pkg/organization"
	"github.com/tendant/simple-org/pkg/security"
	"github.com/tendant/simple-org/pkg/sessions"
	"github.com/tendant/simple-org/pkg/user"
)

type Config struct {
	DbConfig      config.DatabaseConfig
	AppConfig     app.AppConfig
	JwtConfig     config.JwtConfig
	EmailConfig   config.EmailConfig
	ServiceConfig config.ServiceConfig
}

func main() {

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	cryptoService, err := crypto.NewService(cfg.ServiceConfig.CryptoSecret)
	if err != nil {
		slog.Error("Failed creating crypto service", "err", err)
		os.Exit(-1)
	}

	errWriter := apierror.NewWriter(cfg.ServiceConfig.Environment)

	// Error pipeline wraps every route: panics and buffered request bodies
	// both flow through it
	server.R.Use(apierror.BodySnapshot)
	server.R.Use(errWriter.Recoverer)

	userRepo := user.NewPostgresRepository(pool)
	orgRepo := organization.NewPostgresRepository(pool)
	sessionRepo := sessions.NewPostgresRepository(pool)

	userService := user.NewService(userRepo, cryptoService)
	orgService := organization.NewService(orgRepo)
	sessionService := sessions.NewService(sessionRepo)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			sessionService.CleanupExpired(context.Background())
		}
	}()

	tokenService := auth.NewTokenService(cfg.JwtConfig.Secret, cfg.JwtConfig.Issuer, cfg.JwtConfig.Expiry())
	authenticator := auth.NewAuthenticator(tokenService, sessionService, userService, cfg.JwtConfig.TokenFallback)
	authMiddleware := auth.NewMiddleware(authenticator, errWriter)

	var emailSender notification.EmailSender = notification.NoopSender{}
	if cfg.EmailConfig.Host != "" {
		notifier, err := notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     cfg.EmailConfig.Host,
			Port:     cfg.EmailConfig.Port,
			TLS:      cfg.EmailConfig.TLS,
			Username: cfg.EmailConfig.Username,
			Password: cfg.EmailConfig.Password,
			From:     cfg.EmailConfig.From,
		})
		if err != nil {
			slog.Error("Failed creating email notifier", "err", err)
			os.Exit(-1)
		}
		emailSender = notifier
	}

	securityService := security.NewService(userRepo, cryptoService, tokenService, sessionService, emailSender, cfg.EmailConfig.BaseURL)

	userHandle := user.NewHandle(userService, errWriter)
	orgHandle := organization.NewHandle(orgService, errWriter)
	securityHandle := security.NewHandle(securityService, tokenService, errWriter)

	server.R.Mount("/users", user.Handler(userHandle, authMiddleware))
	server.R.Mount("/organization", organization.Handler(orgHandle, authMiddleware))
	server.R.Mount("/security", security.Handler(securityHandle, authMiddleware))

	server.Run()

}
