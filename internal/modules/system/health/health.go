// Package health reports dependency liveness and the maintenance job table.
package health

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/pkg/cron"
	"github.com/podcastify/core/internal/pkg/response"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Scheduler interface {
	List() []cron.ListItem
	Run(ctx context.Context, name string) error
}

type Handler struct {
	checks map[string]Pinger
	sched  Scheduler
	start  time.Time
}

// NewHandler reports on every named dependency in checks. Nil pingers are skipped.
func NewHandler(checks map[string]Pinger, sched Scheduler) *Handler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &Handler{checks: live, sched: sched, start: time.Now()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.health)

	jobs := rg.Group("/health/cron", authMW)
	jobs.GET("", func(c *gin.Context) { response.OK(c, h.jobs()) })
	jobs.POST("/run/:name", h.run)
}

type check struct {
	OK      bool   `json:"ok"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) health(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "ok", http.StatusOK
	results := make(map[string]check, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		began := time.Now()
		err := h.checks[name].Ping(ctx)
		cancel()

		res := check{OK: err == nil, Latency: time.Since(began).Round(time.Microsecond).String()}
		if err != nil {
			res.Error = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		results[name] = res
	}

	c.JSON(code, gin.H{
		"status": status,
		"uptime": time.Since(h.start).Round(time.Second).String(),
		"checks": results,
		"jobs":   h.jobs(),
	})
}

func (h *Handler) jobs() []cron.ListItem {
	if h.sched == nil {
		return []cron.ListItem{}
	}
	return h.sched.List()
}

func (h *Handler) run(c *gin.Context) {
	if h.sched == nil {
		response.NotFound(c, "no scheduler")
		return
	}
	err := h.sched.Run(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, cron.ErrUnknownJob):
		response.NotFound(c, err.Error())
	case err != nil:
		response.Fail(c, http.StatusInternalServerError, err.Error())
	default:
		response.Done(c)
	}
}
