package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-wallet-api/internal/application/account"
	"github.com/go-wallet-api/internal/application/admin"
	"github.com/go-wallet-api/internal/application/otp"
	"github.com/go-wallet-api/internal/application/transfer"
	"github.com/go-wallet-api/internal/config"
	"github.com/go-wallet-api/internal/domain"
	"github.com/go-wallet-api/internal/transport/http/handler"
	appmiddleware "github.com/go-wallet-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo:     deps.AccountRepo,
		JWTProvider:     deps.JWTProvider,
		StartingBalance: cfg.StartingBalance,
		DailyLimit:      cfg.DefaultDailyLimit,
		Currency:        cfg.Currency,
	})
	transferSvc := transfer.NewService(transfer.ServiceDeps{
		AccountRepo:  deps.AccountRepo,
		TransferRepo: deps.TransferRepo,
		LedgerWriter: deps.LedgerWriter,
		SMSSender:    deps.SMSSender,
	})
	otpSvc := otp.NewService(otp.ServiceDeps{
		AccountRepo:   deps.AccountRepo,
		ChallengeRepo: deps.ChallengeRepo,
		SMSSender:     deps.SMSSender,
		TTL:           cfg.OTPTTL,
		MaxAttempts:   cfg.OTPMaxAttempts,
		EchoCode:      cfg.SMSMode == config.SMSModeSimulate,
	})
	adminSvc := admin.NewService(admin.ServiceDeps{
		AccountRepo:  deps.AccountRepo,
		TransferRepo: deps.TransferRepo,
		AuditStore:   deps.AuditStore,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(accountSvc)
	accountH := handler.NewAccountHandler(accountSvc)
	transferH := handler.NewTransferHandler(transferSvc)
	otpH := handler.NewOTPHandler(otpSvc)
	adminH := handler.NewAdminHandler(adminSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/accounts", accountH.List)
			r.Get("/accounts/{id}", accountH.Get)
			r.Put("/accounts/{id}", accountH.Update)
			r.Patch("/accounts/{id}/password", accountH.ChangePassword)

			r.With(sensitiveRL.Limit).Post("/otp/request", otpH.Request)
			r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)

			r.Post("/transfers", transferH.Send)
			r.Get("/transfers/{accountId}", transferH.History)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/admin/transfers", adminH.ListTransfers)
				r.Get("/admin/transfers/flagged", adminH.ListFlagged)
				r.Post("/admin/transfers/flagged/export", adminH.ExportFlagged)
				r.Patch("/admin/accounts/{accountId}/freeze", adminH.Freeze)
				r.Patch("/admin/accounts/{accountId}/unfreeze", adminH.Unfreeze)
			})
		})
	})

	return r
}
