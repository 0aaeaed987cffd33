package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/launchpanel/hub/internal/adsapi"
	"github.com/launchpanel/hub/internal/config"
	"github.com/launchpanel/hub/internal/handler"
	"github.com/launchpanel/hub/internal/middleware"
	"github.com/launchpanel/hub/internal/ratelimit"
	"github.com/launchpanel/hub/internal/service"
)

// New builds the HTTP router.
// registry may be nil; if nil, one is created internally. Passing a
// pre-created instance allows main.go to hook its denial callback into
// metrics before the router sees it.
func New(cfg *config.Config, db *sql.DB, registry *ratelimit.Registry) http.Handler {
	if registry == nil {
		registry = ratelimit.NewRegistry()
	}

	authSvc := service.NewAuthService(db, cfg.TokenExpiryHours)
	userSvc := service.NewUserService(db)
	campaignSvc := service.NewCampaignService(db)
	affiliateSvc := service.NewAffiliateService(db)
	proxySvc := service.NewProxyService(db)

	adsClient := adsapi.New(cfg.AdsAPIBaseURL)
	task := service.NewAdsStartTask(db, registry, adsClient, service.AdsThrottle{
		Scope:   "ads-api",
		RPS:     cfg.AdsRateRPS,
		Burst:   cfg.AdsRateBurst,
		MaxWait: time.Duration(cfg.AdsRateMaxWaitMs) * time.Millisecond,
	})
	oneClickSvc := service.NewOneClickService(db, task)
	runStore := service.NewRunStore(cfg.RedisAddr)
	archiver, err := service.NewReportArchiver(service.ArchiveConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		// A broken archive config should not take the panel down.
		archiver = nil
	}

	authH := handler.NewAuthHandler(authSvc)
	healthH := handler.NewHealthHandler("0.3.0")
	userH := handler.NewUserHandler(userSvc)
	campaignH := handler.NewCampaignHandler(campaignSvc, affiliateSvc)
	proxyH := handler.NewProxyHandler(proxySvc)
	oneClickH := handler.NewOneClickHandler(oneClickSvc, runStore, archiver)

	requireAuth := middleware.AuthMiddleware(authSvc.ValidateToken)
	requireInternal := middleware.RequireInternalSecret(cfg.InternalSecret)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace)
	r.Use(middleware.Throttle(cfg.APIRateRPS, cfg.APIRateBurst))

	// Public
	r.Get("/v1/health", healthH.Health)
	r.Get("/v1/version", healthH.Version)
	r.Post("/v1/auth/login", authH.Login)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/v1/auth/logout", authH.Logout)
		r.Get("/v1/me", authH.Me)
		r.Get("/v1/diagnostics", healthH.Diagnostics)

		r.Get("/v1/users", userH.List)
		r.Post("/v1/users", userH.Create)
		r.Patch("/v1/users/{user_id}", userH.Update)
		r.Delete("/v1/users/{user_id}", userH.Delete)

		r.Get("/v1/campaigns", campaignH.List)
		r.Post("/v1/campaigns", campaignH.Create)
		r.Patch("/v1/campaigns/{campaign_id}", campaignH.Update)
		r.Delete("/v1/campaigns/{campaign_id}", campaignH.Delete)

		r.Get("/v1/campaigns/{campaign_id}/affiliates", campaignH.ListAffiliates)
		r.Post("/v1/campaigns/{campaign_id}/affiliates", campaignH.CreateAffiliate)
		r.Patch("/v1/affiliates/{affiliate_id}", campaignH.UpdateAffiliate)
		r.Delete("/v1/affiliates/{affiliate_id}", campaignH.DeleteAffiliate)

		r.Get("/v1/proxies", proxyH.List)
		r.Post("/v1/proxies", proxyH.Create)
		r.Delete("/v1/proxies/{proxy_id}", proxyH.Delete)

		r.Get("/v1/oneclick/last-run", oneClickH.LastRun)
	})

	// Internal: trigger → hub
	r.Group(func(r chi.Router) {
		r.Use(requireInternal)
		r.Post("/internal/oneclick/run", oneClickH.Run)
	})

	return r
}
