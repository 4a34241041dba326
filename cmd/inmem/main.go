// Package main runs the account service without a database or mail
// transport. Verification and reset codes are logged instead of delivered.
// Useful for quick development, demos and API exploration; all data is lost
// when the server stops. For production use cmd/accountd with PostgreSQL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/cors"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/gateway"
	gatewayapi "github.com/tendant/simple-account/pkg/gateway/api"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/loginattempt"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/reset"
	"github.com/tendant/simple-account/pkg/tokengenerator"
	"github.com/tendant/simple-account/pkg/verification"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "simple-account"

var jwtSecret = config.GetEnvOrDefault("JWT_SECRET", "inmem-dev-secret-change-in-production")

// loggingGateway assigns a generated code to the pending record and logs it
// instead of sending anything.
type loggingGateway struct {
	sinks map[notification.NoticeType]gateway.CodeSink
}

func newLoggingGateway() *loggingGateway {
	return &loggingGateway{sinks: make(map[notification.NoticeType]gateway.CodeSink)}
}

func (g *loggingGateway) RegisterSink(notice notification.NoticeType, sink gateway.CodeSink) {
	g.sinks[notice] = sink
}

func (g *loggingGateway) Deliver(ctx context.Context, delivery gateway.Delivery) error {
	sink, ok := g.sinks[delivery.Notice]
	if !ok {
		return fmt.Errorf("no code sink registered for notice type: %s", delivery.Notice)
	}

	code, err := gateway.GeneratePasscode()
	if err != nil {
		return err
	}
	if err := sink.AssignCode(ctx, delivery.RecordID, code); err != nil {
		return err
	}

	slog.Info("Code delivery (dev mode, not sent)",
		"recipient", delivery.Recipient,
		"channel", delivery.Channel,
		"code", code,
		"expiresAt", delivery.ExpiresAt.Format(time.RFC3339))
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting In-Memory Account Service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	accountRepo := account.NewInMemRepository()
	seedDemoAccount(accountRepo)

	gw := newLoggingGateway()

	registrationService := account.NewRegistrationService(accountRepo)
	verificationService := verification.NewService(verification.NewInMemRepository(), gw, accountRepo)
	resetService := reset.NewService(reset.NewInMemRepository(), gw, accountRepo)

	gw.RegisterSink(notification.EmailVerificationNotice, verificationService)
	gw.RegisterSink(notification.MobileVerificationNotice, verificationService)
	gw.RegisterSink(notification.PasswordResetNotice, resetService)
	gw.RegisterSink(notification.UsernameRecoveryNotice, resetService)

	attemptService := loginattempt.NewService(loginattempt.NewInMemRepository())
	tokens := tokengenerator.NewJwtTokenGenerator(jwtSecret, issuer, issuer)
	loginService := login.NewService(accountRepo, attemptService, tokens)

	server := app.NewApp(
		app.WithPort(4000),
		app.WithCORS(&cors.Options{
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	accountHandler := account.NewHandler(registrationService)
	verificationHandler := verification.NewHandler(verificationService, accountRepo)
	resetHandler := reset.NewHandler(resetService)
	loginHandler := login.NewHandler(loginService, accountRepo)
	gatewayHandler := gatewayapi.NewHandler(verificationService, resetService)

	accountHandler.RegisterRoutes(server.R)
	resetHandler.RegisterRoutes(server.R)
	loginHandler.RegisterRoutes(server.R)
	server.R.Mount("/verification", verificationHandler.Routes())
	server.R.Mount("/gateway", gatewayHandler.Routes())

	tokenAuth := jwtauth.New("HS256", []byte(jwtSecret), nil)
	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		accountHandler.RegisterProtectedRoutes(r)
		loginHandler.RegisterProtectedRoutes(r)
	})

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-Memory Account Service Ready")
	slog.Info("")
	slog.Info("Test credentials:")
	slog.Info("  Username: demo")
	slog.Info("  Password: password123")
	slog.Info("")
	slog.Info("API Endpoints:")
	slog.Info("  POST /register/step1                - Start registration")
	slog.Info("  POST /register/step2                - Set credentials")
	slog.Info("  POST /register/step3                - Complete profile")
	slog.Info("  POST /login                         - Login")
	slog.Info("  POST /verification/send-email       - Send email code")
	slog.Info("  POST /verification/verify-email     - Verify email code")
	slog.Info("  POST /request-password-reset        - Request password reset")
	slog.Info("  GET  /me                            - Current user (auth required)")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}

func seedDemoAccount(repo *account.InMemRepository) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to seed demo account", "err", err)
		return
	}

	acct, err := repo.Create(ctx, account.Account{
		ID:            uuid.New(),
		FirstName:     "Demo",
		LastName:      "User",
		Email:         "demo@example.com",
		DateOfBirth:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		IsOver18:      true,
		AcceptedTerms: true,
	})
	if err != nil {
		slog.Error("Failed to seed demo account", "err", err)
		return
	}

	acct.Username = "demo"
	acct.PasswordHash = string(hash)
	acct.MobileNumber = "+15550100"
	acct.BankrollCurrency = "USD"
	acct.RegistrationStep = account.StepProfile
	acct.RegistrationCompleted = true
	acct.IsActive = true
	if _, err := repo.Update(ctx, acct); err != nil {
		slog.Error("Failed to seed demo account", "err", err)
	}
}
