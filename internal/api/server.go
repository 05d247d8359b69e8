package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nexaguru/nexaguru/internal/config"
	"github.com/nexaguru/nexaguru/internal/models"
	"github.com/nexaguru/nexaguru/internal/service"
)

type Server struct {
	cfg         config.Config
	log         *slog.Logger
	auth        *service.AuthService
	ledger      *service.LedgerService
	generations *service.GenerationService
	gifts       *service.GiftService
	plans       *service.PlanService
	payments    *service.PaymentService
	accounts    service.AccountStore
	router      *chi.Mux
}

func NewServer(cfg config.Config, log *slog.Logger, auth *service.AuthService, ledger *service.LedgerService, generations *service.GenerationService, gifts *service.GiftService, plans *service.PlanService, payments *service.PaymentService, accounts service.AccountStore) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:         cfg,
		log:         log,
		auth:        auth,
		ledger:      ledger,
		generations: generations,
		gifts:       gifts,
		plans:       plans,
		payments:    payments,
		accounts:    accounts,
		router:      r,
	}

	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/plans", s.handleListPlans)
	r.Get("/support", s.handleSupport)

	r.Group(func(authed chi.Router) {
		authed.Use(s.sessionMiddleware)
		authed.Post("/auth/logout", s.handleLogout)
		authed.Post("/auth/logout-all", s.handleLogoutAll)
		authed.Get("/me", s.handleMe)
		authed.Post("/generate", s.handleGenerate)
		authed.Post("/gift/redeem", s.handleRedeemGift)
		authed.Post("/payments", s.handleInitiatePayment)
		authed.Get("/payments", s.handleListPayments)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(s.basicAuthMiddleware())
		admin.Post("/admin/credits", s.handleAddCredits)
		admin.Get("/admin/accounts", s.handleListAccounts)
		admin.Post("/admin/payments/{id}/confirm", s.handleConfirmPayment)
		admin.Post("/admin/payments/{id}/cancel", s.handleCancelPayment)
		admin.Route("/admin/plans", func(r chi.Router) {
			r.Get("/", s.handleAdminListPlans)
			r.Post("/", s.handleCreatePlan)
			r.Put("/{id}", s.handleUpdatePlan)
			r.Delete("/{id}", s.handleDeletePlan)
		})
		admin.Route("/admin/gift-codes", func(r chi.Router) {
			r.Get("/", s.handleListGiftCodes)
			r.Post("/", s.handleCreateGiftCode)
			r.Put("/{id}", s.handleUpdateGiftCode)
			r.Delete("/{id}", s.handleDeleteGiftCode)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // video generation holds the request open
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("api shutdown error", "err", err)
		}
	}()

	s.log.Info("api listening", "addr", s.cfg.ListenAddr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

type contextKey string

const accountContextKey contextKey = "account"

// sessionMiddleware resolves the bearer token into the current account.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, http.StatusUnauthorized, "not_authenticated", "authentication required")
			return
		}
		account, err := s.auth.Current(r.Context(), token)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if account == nil {
			s.writeError(w, http.StatusUnauthorized, "not_authenticated", "session expired or revoked")
			return
		}
		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) basicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.cfg.AdminUsername || pass != s.cfg.AdminPassword {
				w.Header().Set("WWW-Authenticate", `Basic realm="nexaguru"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentAccount(r *http.Request) *models.Account {
	account, _ := r.Context().Value(accountContextKey).(*models.Account)
	return account
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
	})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("api handler error", "err", err)
	s.writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}
