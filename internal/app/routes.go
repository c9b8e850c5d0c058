package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/config"
	"github.com/podcastify/core/internal/middleware"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
	"github.com/podcastify/core/internal/modules/content/ad"
	"github.com/podcastify/core/internal/modules/content/blog"
	"github.com/podcastify/core/internal/modules/content/podcast"
	"github.com/podcastify/core/internal/modules/notification/dispatch"
	"github.com/podcastify/core/internal/modules/notification/notify"
	"github.com/podcastify/core/internal/modules/notification/subscription"
	"github.com/podcastify/core/internal/modules/publish"
	"github.com/podcastify/core/internal/modules/syndication/feed"
	"github.com/podcastify/core/internal/modules/system/health"
	"github.com/podcastify/core/internal/pkg/response"
)

var appInfo = gin.H{
	"name":    "podcastify-core",
	"version": "1.0.0",
}

func (a *App) registerRoutes() {
	r := a.router
	rdb := a.redis.Raw()
	cookie := a.cfg.Auth.CookieName

	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })
	r.NoMethod(func(c *gin.Context) { response.Fail(c, http.StatusMethodNotAllowed, "method not allowed") })

	authMW := middleware.Auth(a.verifier, cookie)
	idempotent := middleware.Idempotence(rdb, cookie)
	limit := middleware.RateLimit(rdb, a.cfg.RateLimit.PerSecond, a.bark.ThrottlePush)

	subs := subscription.NewStore(a.db)
	sender := dispatch.NewWebPushSender(a.cfg.Push, nil, a.logger)
	dispatcher := dispatch.New(sender, subs,
		dispatch.WithConcurrency(a.cfg.Push.Concurrency),
		dispatch.WithLogger(a.logger),
		dispatch.WithMetrics(a.metrics),
		dispatch.WithSite(a.cfg.Site.URL),
	)
	deps := publish.Deps{
		Media:           a.media,
		Audience:        subs,
		Dispatcher:      dispatcher,
		Reporter:        notify.NewReporter(a.cfg.Site.Title, a.bark, a.mail, a.logger),
		Logger:          a.logger,
		Metrics:         a.metrics,
		DispatchTimeout: a.cfg.Push.DispatchTimeout,
	}

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(a.verifier, cookie))
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	podcasts := content.NewRepository[models.Podcast, *models.Podcast](a.db, podcast.Schema)
	blogs := content.NewRepository[models.BlogPost, *models.BlogPost](a.db, blog.Schema)
	ads := content.NewRepository[models.Advertisement, *models.Advertisement](a.db, ad.Schema)

	mountKind[models.Podcast, *models.Podcast](api.Group("/podcasts"), podcast.NewDescriptor(), podcasts, deps, authMW, idempotent)
	mountKind[models.BlogPost, *models.BlogPost](api.Group("/blogs"), blog.NewDescriptor(), blogs, deps, authMW, idempotent)
	mountKind[models.Advertisement, *models.Advertisement](api.Group("/ads"), ad.NewDescriptor(), ads, deps, authMW, idempotent)

	subscription.NewHandler(subs, dispatcher, sender.PublicKey()).
		RegisterRoutes(api.Group("/notifications"), limit, authMW)

	health.NewHandler(map[string]health.Pinger{"mongo": a.db, "redis": a.redis}, a.sched).
		RegisterRoutes(api, authMW)

	feed.NewHandler(a.cfg.Site, podcasts, blogs, a.logger).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	if a.cfg.Media.Driver == config.MediaDriverLocal {
		r.Static(a.cfg.Media.Local.URLPrefix, a.cfg.MediaDir())
	}
	a.registerAdmin()
}

// mountKind wires one content kind's repository, workflow and handler under rg.
func mountKind[T any, P content.Entity[T]](rg *gin.RouterGroup, desc content.Descriptor[T, P], store content.Store[T, P], deps publish.Deps, authMW ...gin.HandlerFunc) {
	wf := publish.New[T, P](desc.Kind, store, deps)
	content.NewHandler(desc, store, wf).RegisterRoutes(rg, authMW...)
}

// registerAdmin serves the admin bundle behind the token gate.
func (a *App) registerAdmin() {
	dir := a.cfg.AdminDir()
	if dir == "" {
		return
	}
	admin := a.router.Group("/admin", middleware.AdminGate(a.verifier, a.cfg.Auth.CookieName, a.cfg.Auth.AdminLoginPath))
	admin.Static("/", dir)
}

func placeholders(d config.MediaDefaultsURLs) map[models.Kind]string {
	return map[models.Kind]string{
		models.KindPodcast: d.Podcast,
		models.KindBlog:    d.Blog,
		models.KindAd:      d.Ad,
	}
}
