package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/gateway"
	gatewayapi "github.com/tendant/simple-account/pkg/gateway/api"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/loginattempt"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/ratelimit"
	"github.com/tendant/simple-account/pkg/reset"
	"github.com/tendant/simple-account/pkg/tokengenerator"
	"github.com/tendant/simple-account/pkg/verification"
)

type Config struct {
	DbConfig        config.DatabaseConfig
	AppConfig       app.AppConfig
	JwtConfig       config.JWTConfig
	EmailConfig     config.EmailConfig
	TwilioConfig    config.TwilioConfig
	LifecycleConfig config.LifecycleConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	pool, err := pgxpool.New(context.Background(), cfg.DbConfig.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host, "err", err)
		os.Exit(-1)
	}

	manager, err := buildNotificationManager(cfg)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}
	gw := gateway.NewNotifyingGateway(manager)

	verificationTTL, err := cfg.LifecycleConfig.ParseVerificationTTL()
	if err != nil {
		slog.Error("Invalid verification TTL", "value", cfg.LifecycleConfig.VerificationTTL, "err", err)
		os.Exit(-1)
	}
	resetTTL, err := cfg.LifecycleConfig.ParseResetTTL()
	if err != nil {
		slog.Error("Invalid reset TTL", "value", cfg.LifecycleConfig.ResetTTL, "err", err)
		os.Exit(-1)
	}
	sessionTTL, err := cfg.JwtConfig.ParseSessionTokenExpiry()
	if err != nil {
		slog.Error("Invalid session token expiry", "value", cfg.JwtConfig.SessionTokenExpiry, "err", err)
		os.Exit(-1)
	}

	accountRepo := account.NewPostgresRepository(pool)
	registrationService := account.NewRegistrationService(accountRepo)

	verificationService := verification.NewService(
		verification.NewPostgresRepository(pool), gw, accountRepo,
		verification.WithTTL(verificationTTL),
		verification.WithMaxAttempts(cfg.LifecycleConfig.MaxAttempts),
	)
	resetService := reset.NewService(
		reset.NewPostgresRepository(pool), gw, accountRepo,
		reset.WithTTL(resetTTL),
		reset.WithMaxAttempts(cfg.LifecycleConfig.MaxAttempts),
	)

	gw.RegisterSink(notification.EmailVerificationNotice, verificationService)
	gw.RegisterSink(notification.MobileVerificationNotice, verificationService)
	gw.RegisterSink(notification.PasswordResetNotice, resetService)
	gw.RegisterSink(notification.UsernameRecoveryNotice, resetService)

	attemptService := loginattempt.NewService(loginattempt.NewPostgresRepository(pool))
	tokens := tokengenerator.NewJwtTokenGenerator(cfg.JwtConfig.Secret, cfg.JwtConfig.Issuer, cfg.JwtConfig.Audience)
	loginService := login.NewService(accountRepo, attemptService, tokens, login.WithTokenTTL(sessionTTL))

	accountHandler := account.NewHandler(registrationService)
	verificationHandler := verification.NewHandler(verificationService, accountRepo)
	resetHandler := reset.NewHandler(resetService)
	loginHandler := login.NewHandler(loginService, accountRepo)
	gatewayHandler := gatewayapi.NewHandler(verificationService, resetService)

	accountHandler.RegisterRoutes(server.R)
	server.R.Mount("/gateway", gatewayHandler.Routes())

	// code issuance and password checks are rate limited per client
	limiter := ratelimit.NewLimiter(cfg.LifecycleConfig.RateLimitBurst, cfg.LifecycleConfig.RateLimitPerMinute)
	server.R.Group(func(r chi.Router) {
		r.Use(ratelimit.Guard(limiter))
		resetHandler.RegisterRoutes(r)
		loginHandler.RegisterRoutes(r)
		r.Mount("/verification", verificationHandler.Routes())
	})

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil)
	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		accountHandler.RegisterProtectedRoutes(r)
		loginHandler.RegisterProtectedRoutes(r)
	})

	server.Run()
}

func buildNotificationManager(cfg Config) (*notification.NotificationManager, error) {
	opts := []notification.NotificationManagerOption{
		notification.WithDefaultTemplates(),
	}

	if cfg.EmailConfig.HasFallback() {
		opts = append(opts, notification.WithSMTPFailover(
			cfg.EmailConfig.ToSMTPConfig(),
			cfg.EmailConfig.ToFallbackSMTPConfig(),
		))
	} else {
		opts = append(opts, notification.WithSMTP(cfg.EmailConfig.ToSMTPConfig()))
	}

	if cfg.TwilioConfig.IsConfigured() {
		opts = append(opts, notification.WithTwilio(cfg.TwilioConfig.ToNotificationTwilioConfig()))
	} else {
		slog.Warn("Twilio is not configured, mobile verification codes will not be delivered")
	}

	return notification.NewNotificationManagerWithOptions(opts...)
}
