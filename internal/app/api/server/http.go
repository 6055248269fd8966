package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/docs"
	"github.com/fatflowers/notemarket/internal/app/api/handlers"
	mw "github.com/fatflowers/notemarket/internal/app/api/middleware"
	"github.com/fatflowers/notemarket/internal/app/service/access"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	notificationlog "github.com/fatflowers/notemarket/internal/app/service/notification_log"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/app/service/statistics"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	cfgpkg "github.com/fatflowers/notemarket/pkg/config"
	metrics "github.com/fatflowers/notemarket/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger, access log and auth are attached per group in registerRoutes.
	r.Use(mw.TraceMiddleware())
	return r
}

type routeParams struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Settings settlement.Settings
	Manager  settlement.Manager
	Gate     *access.Gate
	Ledger   *ledger.Service
	Links    *merchantlink.Service
	Notes    *notificationlog.Service
	Stats    *statistics.Service
	Provider *mercadopago.Client
}

func registerRoutes(r *gin.Engine, p routeParams) {
	log, cfg := p.Log, p.Cfg
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return "unmatched"
			},
			Logger: log,
		})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	common := []gin.HandlerFunc{
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
		mw.Authenticate(cfg.Auth),
	}

	// Browser-facing pages and provider callbacks
	pub := r.Group("/", common...)
	handlers.RegisterHealthRoutes(pub, p.Provider)
	handlers.RegisterPurchaseRoutes(pub, p.Manager, p.Settings, log)
	handlers.RegisterPaymentWebhookRoutes(pub, p.Manager, log)
	handlers.RegisterDocumentRoutes(pub, p.Gate, p.Settings, log)
	handlers.RegisterMerchantRoutes(pub, p.Links, p.Provider, p.Settings, log)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1", common...)
	handlers.RegisterDocumentAPIRoutes(apiV1, p.Gate, log)
	handlers.RegisterFeeRoutes(apiV1, cfg)
	handlers.RegisterUserRoutes(apiV1, p.Ledger)
	handlers.RegisterMerchantAPIRoutes(apiV1, p.Links)

	handlers.RegisterAdminRoutes(apiV1.Group("/admin", mw.RequireAdmin()), p.Ledger, p.Manager, p.Notes, p.Stats)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
