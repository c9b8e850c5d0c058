package subscription

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/notification/dispatch"
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/response"
	"github.com/podcastify/core/internal/pkg/validate"
)

// Registry is the subscription storage the handler works against.
type Registry interface {
	Subscribe(ctx context.Context, in SubscribeInput) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, endpoint string) error
	Get(ctx context.Context, endpoint string) (*models.Subscription, error)
	UpdatePreferences(ctx context.Context, endpoint string, patch models.PreferencesPatch) (*models.Subscription, error)
	ActiveFor(ctx context.Context, c models.Category) ([]models.Subscription, error)
	Stats(ctx context.Context) (Stats, error)
}

// Broadcaster sends owner-authored notifications.
type Broadcaster interface {
	Custom(title, body, url string) dispatch.Payload
	Dispatch(ctx context.Context, kind models.Kind, p dispatch.Payload, subs []models.Subscription) []dispatch.DeliveryResult
}

type Handler struct {
	reg       Registry
	bc        Broadcaster
	publicKey string
}

func NewHandler(reg Registry, bc Broadcaster, publicKey string) *Handler {
	return &Handler{reg: reg, bc: bc, publicKey: publicKey}
}

// RegisterRoutes mounts /notifications. limit guards the public writes;
// authMW guards the owner routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit, authMW gin.HandlerFunc) {
	public := rg.Group("")
	if limit != nil {
		public.Use(limit)
	}
	rg.GET("", h.publicKeyInfo)
	public.POST("", h.subscribe)
	public.DELETE("", h.unsubscribe)
	rg.GET("/preferences", h.preferences)
	public.PUT("/preferences", h.updatePreferences)

	owner := rg.Group("", authMW)
	owner.POST("/send", h.send)
	owner.GET("/stats", h.stats)
}

type subscribeRequest struct {
	Subscription *struct {
		Endpoint string          `json:"endpoint"`
		Keys     models.PushKeys `json:"keys"`
	} `json:"subscription" binding:"-"`
	// Endpoint and Keys accept the bare PushSubscription JSON as well. Both
	// shapes are checked by SubscribeInput.Validate.
	Endpoint    string              `json:"endpoint"`
	Keys        models.PushKeys     `json:"keys" binding:"-"`
	Preferences *models.Preferences `json:"preferences"`
}

type endpointRequest struct {
	Endpoint string `json:"endpoint"`
}

type preferencesRequest struct {
	Endpoint    string                  `json:"endpoint"    binding:"required"`
	Preferences models.PreferencesPatch `json:"preferences"`
}

type sendRequest struct {
	Title    string          `json:"title"    binding:"required"`
	Body     string          `json:"body"     binding:"required"`
	URL      string          `json:"url"      binding:"omitempty,http_url"`
	Category models.Category `json:"category" binding:"required,oneof=podcasts blogs advertisements"`
}

// publicKeyInfo GET /notifications
func (h *Handler) publicKeyInfo(c *gin.Context) {
	response.OK(c, gin.H{"publicKey": h.publicKey})
}

// subscribe POST /notifications
func (h *Handler) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validate.Bind(err))
		return
	}
	in := SubscribeInput{
		Endpoint:    req.Endpoint,
		Keys:        req.Keys,
		Preferences: req.Preferences,
		UserAgent:   c.Request.UserAgent(),
	}
	if req.Subscription != nil {
		in.Endpoint, in.Keys = req.Subscription.Endpoint, req.Subscription.Keys
	}
	sub, err := h.reg.Subscribe(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// unsubscribe DELETE /notifications
func (h *Handler) unsubscribe(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" && c.Request.ContentLength != 0 {
		var req endpointRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, validate.Bind(err))
			return
		}
		endpoint = req.Endpoint
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		response.Error(c, apperr.Invalid("endpoint", "is required"))
		return
	}
	if err := h.reg.Unsubscribe(c.Request.Context(), endpoint); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c)
}

// preferences GET /notifications/preferences?endpoint=
func (h *Handler) preferences(c *gin.Context) {
	endpoint := strings.TrimSpace(c.Query("endpoint"))
	if endpoint == "" {
		response.Error(c, apperr.Invalid("endpoint", "is required"))
		return
	}
	sub, err := h.reg.Get(c.Request.Context(), endpoint)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"preferences": sub.Preferences, "isActive": sub.IsActive})
}

// updatePreferences PUT /notifications/preferences
func (h *Handler) updatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validate.Bind(err))
		return
	}
	sub, err := h.reg.UpdatePreferences(c.Request.Context(), strings.TrimSpace(req.Endpoint), req.Preferences)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"preferences": sub.Preferences, "isActive": sub.IsActive})
}

// send POST /notifications/send  [auth]
func (h *Handler) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validate.Bind(err))
		return
	}
	ctx := c.Request.Context()
	subs, err := h.reg.ActiveFor(ctx, req.Category)
	if err != nil {
		response.Error(c, err)
		return
	}
	results := h.bc.Dispatch(ctx, models.Kind("broadcast"), h.bc.Custom(req.Title, req.Body, req.URL), subs)
	response.OK(c, gin.H{"summary": dispatch.Summarize(results), "results": results})
}

// stats GET /notifications/stats  [auth]
func (h *Handler) stats(c *gin.Context) {
	st, err := h.reg.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, st)
}
