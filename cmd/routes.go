package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/analytics"
	"github.com/quotelink/referral-api/internal/auth"
	"github.com/quotelink/referral-api/internal/beacon"
	"github.com/quotelink/referral-api/internal/click"
	"github.com/quotelink/referral-api/internal/config"
	"github.com/quotelink/referral-api/internal/conversion"
	"github.com/quotelink/referral-api/internal/metrics"
	"github.com/quotelink/referral-api/internal/middleware"
	"github.com/quotelink/referral-api/internal/notification"
	"github.com/quotelink/referral-api/internal/settlement"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

func newRouter(cfg *config.Config, db *gorm.DB, tokens *auth.Tokens, notifier notification.Notifier, limiter *middleware.RateLimiter) http.Handler {
	// Handlers
	agentHandler := agent.NewHandler(db, cfg.SiteURL)
	clickHandler := click.NewHandler(db)
	clickHandler.TrustProxyHeaders = cfg.TrustProxyHeaders
	conversionHandler := conversion.NewHandler(conversion.NewRecorder(db, notifier, cfg.DedupWindow))
	analyticsHandler := analytics.NewHandler(analytics.NewEngine(db, cfg.Timezone, cfg.AggregationWorkers))
	settlementHandler := settlement.NewHandler(settlement.NewReconciler(db, cfg.Timezone))

	r := mux.NewRouter()
	r.Use(middleware.Logging)

	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/healthz", healthz(db)).Methods("GET")

	// Login do painel: público, mas limitado por IP
	r.Handle("/api/admin/login", limiter.Middleware(auth.LoginHandler(tokens, cfg.AdminPasswordHash))).Methods("POST")

	// Rotas do painel (Bearer)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(tokens.MiddlewareAutenticacao, auth.RequireAdmin)

	admin.HandleFunc("/agents", agentHandler.Create).Methods("POST")
	admin.HandleFunc("/agents", agentHandler.List).Methods("GET")
	admin.HandleFunc("/agents/{id}", agentHandler.GetByID).Methods("GET")
	admin.HandleFunc("/agents/{id}", agentHandler.Update).Methods("PUT")
	admin.HandleFunc("/agents/{id}", agentHandler.Deactivate).Methods("DELETE")

	admin.HandleFunc("/analytics", analyticsHandler.Get).Methods("GET")

	admin.HandleFunc("/settlement", settlementHandler.Get).Methods("GET")
	admin.HandleFunc("/settlement/complete", settlementHandler.Complete).Methods("POST")
	admin.HandleFunc("/settlement/update-commission", settlementHandler.UpdateCommission).Methods("PATCH")
	admin.HandleFunc("/settlement/history", settlementHandler.History).Methods("GET")

	// Rotas do beacon
	public := r.PathPrefix("/api").Subrouter()
	public.Use(limiter.Middleware)

	public.HandleFunc("/conversion", conversionHandler.Create).Methods("POST")
	public.HandleFunc("/track/click", clickHandler.Track).Methods("POST")
	public.HandleFunc("/track/config", beacon.ConfigHandler(beacon.Config{SessionTTL: cfg.SessionTTL})).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	})
	return c.Handler(r)
}

func healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			http.Error(w, "banco indisponível", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}
}
