package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"credauth/internal/config"
	"credauth/internal/domain"
	"credauth/internal/mail"
	"credauth/internal/observability/logging"
	"credauth/internal/observability/metrics"
	"credauth/internal/observability/middleware"
	impl "credauth/internal/service/impl"
	"credauth/internal/store"
	httpx "credauth/internal/transport/http"
)

func main() {
	logger := logging.NewLogger(logging.Config{
		ServiceName: "credauth",
		Environment: os.Getenv("ENVIRONMENT"),
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("credauth")

	gdb, err := store.OpenGorm(store.DBConfig{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(&domain.Account{}); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	pw := impl.NewPasswordServiceBcrypt()
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:          cfg.Issuer,
		AccessTTL:       cfg.AccessTTL,
		VerificationTTL: cfg.VerificationTTL,
		SigningKey:      []byte(cfg.SigningKey),
	})
	mailer := mail.NewSMTPDispatcher(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	auth := impl.NewAuthServiceImpl(st, pw, ts, mailer, impl.AuthConfig{
		ClientBaseURL:   cfg.ClientBaseURL,
		VerificationTTL: cfg.VerificationTTL,
	})
	accounts := impl.NewAccountServiceImpl(st)

	mux := httpx.NewRouter(auth, accounts)
	handler := middleware.WithRequestAndTrace(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("credauth listening", "addr", srv.Addr, "issuer", cfg.Issuer)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
