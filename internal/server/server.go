package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/loopwire/partnerly/internal/activity"
	activitydomain "github.com/loopwire/partnerly/internal/activity/domain"
	"github.com/loopwire/partnerly/internal/catalog"
	"github.com/loopwire/partnerly/internal/config"
	"github.com/loopwire/partnerly/internal/discovery"
	discoverydomain "github.com/loopwire/partnerly/internal/discovery/domain"
	"github.com/loopwire/partnerly/internal/logger"
	obsmetrics "github.com/loopwire/partnerly/internal/observability/metrics"
	"github.com/loopwire/partnerly/internal/performance"
	"github.com/loopwire/partnerly/internal/ranking"
	rankingdomain "github.com/loopwire/partnerly/internal/ranking/domain"
	"github.com/loopwire/partnerly/internal/similarity"
	similaritydomain "github.com/loopwire/partnerly/internal/similarity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	catalog.Module,
	activity.Module,
	similarity.Module,
	performance.Module,
	ranking.Module,
	discovery.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, cfg config.Config) *gin.Engine {
	httpMetrics := obsmetrics.HTTPWithConfig(obsmetrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	rankingSvc    rankingdomain.Service
	similaritySvc similaritydomain.Service
	discoverySvc  discoverydomain.Service
	stream        activitydomain.Stream
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	RankingSvc    rankingdomain.Service
	SimilaritySvc similaritydomain.Service
	DiscoverySvc  discoverydomain.Service
	Stream        activitydomain.Stream
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		rankingSvc:    p.RankingSvc,
		similaritySvc: p.SimilaritySvc,
		discoverySvc:  p.DiscoverySvc,
		stream:        p.Stream,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	programs := v1.Group("/programs")
	{
		programs.GET("/:program_id/partner-ranking", s.PartnerRanking)
		programs.GET("/:program_id/similar-programs", s.SimilarPrograms)

		discovered := programs.Group("/:program_id/discovered-partners/:partner_id")
		{
			discovered.PUT("/star", s.StarDiscoveredPartner)
			discovered.PUT("/ignore", s.IgnoreDiscoveredPartner)
			discovered.POST("/invite", s.InviteDiscoveredPartner)
		}
	}

	v1.POST("/activity/events", s.PublishActivityEvent)
}
