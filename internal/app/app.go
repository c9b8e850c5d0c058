// Package app assembles the HTTP engine, its dependencies and background jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/podcastify/core/internal/config"
	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/middleware"
	"github.com/podcastify/core/internal/modules/storage/media"
	"github.com/podcastify/core/internal/pkg/bark"
	pkgcron "github.com/podcastify/core/internal/pkg/cron"
	pkgjwt "github.com/podcastify/core/internal/pkg/jwt"
	"github.com/podcastify/core/internal/pkg/mail"
	"github.com/podcastify/core/internal/pkg/metrics"
	pkgredis "github.com/podcastify/core/internal/pkg/redis"
	"github.com/podcastify/core/internal/pkg/response"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	db       *database.DB
	redis    *pkgredis.Client
	media    *media.Store
	backend  media.Backend
	verifier *pkgjwt.Verifier
	metrics  *metrics.Metrics
	bark     *bark.Service
	mail     *mail.Sender
	sched    *pkgcron.Scheduler
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// New connects Mongo and Redis, builds the media backend and mounts every route.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("redis: %w", err)
	}

	backend, err := media.NewBackend(ctx, cfg.Media, cfg.MediaDir(), cfg.Site.URL, logger)
	if err != nil {
		_ = rc.Close()
		_ = db.Close(ctx)
		return nil, fmt.Errorf("media: %w", err)
	}

	a := &App{
		cfg:      cfg,
		db:       db,
		redis:    rc,
		backend:  backend,
		verifier: pkgjwt.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		metrics:  metrics.New(),
		bark:     bark.New(cfg.Bark, cfg.Site.Title),
		mail:     mail.New(cfg.Mail),
		sched:    pkgcron.New(logger),
		logger:   logger,
	}
	a.media = media.NewStore(backend,
		media.WithLogger(logger),
		media.WithMetrics(a.metrics),
		media.WithOrphanQueue(media.NewRedisOrphanQueue(rc.Raw())),
		media.WithPlaceholders(placeholders(cfg.Media.Defaults)),
	)

	a.router = a.newEngine()
	a.registerRoutes()
	a.registerCronJobs()

	jobCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(jobCtx)
	return a, nil
}

func (a *App) newEngine() *gin.Engine {
	if a.cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	response.SetVerbose(a.cfg.IsDev())

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Metrics(a.metrics))
	router.Use(cors.New(corsConfig(a.cfg)))
	return router
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		c.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the job loops and closes the stores.
func (a *App) Shutdown(ctx context.Context) {
	a.cancel()
	a.sched.Wait()
	if closer, ok := a.backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("close media backend", zap.Error(err))
		}
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	if err := a.db.Close(ctx); err != nil {
		a.logger.Warn("close mongo", zap.Error(err))
	}
}
