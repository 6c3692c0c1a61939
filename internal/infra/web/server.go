package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"scouting-backend/internal/config"
	"scouting-backend/internal/domain/ports/adapter"
	"scouting-backend/internal/infra/logging"
	"scouting-backend/internal/infra/redis"
	"scouting-backend/internal/usecase"
)

// Server owns the HTTP surface: public webhook endpoints, the authenticated
// API, and the admin routes.
type Server struct {
	cfg     *config.Config
	auth    *AuthManager
	limiter *redis.RateLimiter

	webhookUC usecase.WebhookUseCase
	paymentUC usecase.PaymentUseCase
	subUC     usecase.SubscriptionUseCase
	entUC     usecase.EntitlementUseCase
	auditUC   usecase.AuditUseCase
	catalogUC usecase.CatalogUseCase

	cinetpay adapter.PaymentGateway
	paydunya adapter.PaymentGateway

	log *zerolog.Logger
	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	webhookUC usecase.WebhookUseCase,
	paymentUC usecase.PaymentUseCase,
	subUC usecase.SubscriptionUseCase,
	entUC usecase.EntitlementUseCase,
	auditUC usecase.AuditUseCase,
	catalogUC usecase.CatalogUseCase,
	cinetpay adapter.PaymentGateway,
	paydunya adapter.PaymentGateway,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		cfg:       cfg,
		auth:      auth,
		limiter:   limiter,
		webhookUC: webhookUC,
		paymentUC: paymentUC,
		subUC:     subUC,
		entUC:     entUC,
		auditUC:   auditUC,
		catalogUC: catalogUC,
		cinetpay:  cinetpay,
		paydunya:  paydunya,
		log:       &srvLog,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Use(s.webhookRateLimit)
		if s.cinetpay != nil {
			r.Post("/cinetpay", webhookHandler(s.webhookUC, s.cinetpay, "x-cinetpay-signature", s.log))
		}
		if s.paydunya != nil {
			r.Post("/paydunya/ipn", webhookHandler(s.webhookUC, s.paydunya, "x-paydunya-signature", s.log))
		}

		// Webhook synthesizer for local testing. LoadConfig refuses this flag
		// outside -dev.
		if s.cfg.Payment.EnableTestEndpoints {
			r.Route("/test", func(r chi.Router) {
				r.Use(s.requireAuth, s.requireAdmin)
				if s.cinetpay != nil {
					r.Post("/cinetpay", testWebhookHandler(s.webhookUC, s.cinetpay, s.cfg.Payment.CinetPay.SecretKey, s.log))
				}
				if s.paydunya != nil {
					r.Post("/paydunya", testWebhookHandler(s.webhookUC, s.paydunya, s.cfg.Payment.PayDunya.SecretKey, s.log))
				}
			})
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/payments/initiate", paymentInitiateHandler(s.paymentUC))
		r.Get("/payments", paymentListHandler(s.paymentUC))
		r.Get("/payments/{transactionID}", paymentStatusHandler(s.paymentUC))
		r.Get("/invoices", invoiceListHandler(s.paymentUC))

		r.Get("/subscriptions/status", subscriptionStatusHandler(s.subUC))
		r.Post("/subscriptions/cancel", subscriptionCancelHandler(s.subUC))

		r.Get("/entitlements", entitlementHandler(s.entUC))
		r.Get("/entitlements/{capability}", capabilityHandler(s.entUC))

		r.Get("/players/me", playerProfileHandler(s.catalogUC))
		r.With(s.requireCapability(usecase.CapSearchPlayers)).
			Get("/players/search", playerSearchHandler(s.catalogUC))
		r.With(s.requireCapability(usecase.CapSearchPlayers)).
			Get("/players/{id}", playerGetHandler(s.catalogUC))
		r.With(s.requireCapability(usecase.CapViewPlayerStats)).
			Get("/players/{id}/stats", playerStatsHandler(s.catalogUC))
		r.With(s.requireCapability(usecase.CapSearchPlayers)).
			Get("/teams", teamListHandler(s.catalogUC))
		r.With(s.requireCapability(usecase.CapSearchPlayers)).
			Get("/teams/{id}", teamGetHandler(s.catalogUC))
		r.With(s.requireCapability(usecase.CapViewMatches)).
			Get("/teams/{id}/matches", teamMatchesHandler(s.catalogUC))

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/teams", teamCreateHandler(s.catalogUC))
			r.Put("/teams/{id}", teamUpdateHandler(s.catalogUC))
			r.Delete("/teams/{id}", teamDeleteHandler(s.catalogUC))
			r.Post("/players", playerCreateHandler(s.catalogUC))
			r.Put("/players/{id}", playerUpdateHandler(s.catalogUC))
			r.Delete("/players/{id}", playerDeleteHandler(s.catalogUC))
			r.Post("/matches", matchCreateHandler(s.catalogUC))
			r.Post("/player-stats", playerStatsCreateHandler(s.catalogUC))

			r.Post("/payments/{transactionID}/refund", paymentRefundHandler(s.paymentUC))
			r.Get("/revenue", revenueHandler(s.paymentUC))
			r.Get("/subscriptions/counts", subscriptionCountsHandler(s.subUC))
			r.Get("/audit", auditQueryHandler(s.auditUC))
		})
	})

	return r
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.HTTP.Port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// ===== Middleware =====

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := withClaims(r.Context(), claims)
		ctx = logging.WithUserID(ctx, claims.UserID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok || !claims.HasAdminRole() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCapability re-validates entitlement on every request. Decisions are
// never cached; expiry must take effect on the next call.
func (s *Server) requireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			allowed, err := s.entUC.CanUseCapability(r.Context(), claims.UserID(), capability)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "entitlement check failed")
				return
			}
			if !allowed {
				writeError(w, http.StatusForbidden, "active subscription required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) webhookRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		key := redis.WebhookKey(r.URL.Path, ip)
		ok, err := s.limiter.Allow(r.Context(), key, s.cfg.RateLimit.WebhookPerMinute, time.Minute)
		if err != nil {
			// Redis outage must not drop provider notifications.
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
