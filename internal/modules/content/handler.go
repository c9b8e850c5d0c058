package content

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/storage/media"
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/pagination"
	"github.com/podcastify/core/internal/pkg/response"
)

// Publisher performs the write side of a kind: publish, revise and retract.
type Publisher[T any, P Entity[T]] interface {
	Publish(ctx context.Context, item P, upload *media.Upload) (P, error)
	Revise(ctx context.Context, id string, apply func(P) error, upload *media.Upload) (P, error)
	Retract(ctx context.Context, id string) error
}

// Change is a decoded update request.
type Change[T any, P Entity[T]] struct {
	ID    string
	Apply func(P) error
}

// Descriptor adapts the generic handler to one kind's input schema.
type Descriptor[T any, P Entity[T]] struct {
	Kind models.Kind
	// FileField is the multipart field holding the image.
	FileField string
	Decode    func(c *gin.Context) (P, error)
	Change    func(c *gin.Context) (Change[T, P], error)
	Filter    func(c *gin.Context) Filter
}

// Handler serves CRUD routes for one kind.
type Handler[T any, P Entity[T]] struct {
	desc  Descriptor[T, P]
	store Store[T, P]
	pub   Publisher[T, P]
}

func NewHandler[T any, P Entity[T]](desc Descriptor[T, P], store Store[T, P], pub Publisher[T, P]) *Handler[T, P] {
	return &Handler[T, P]{desc: desc, store: store, pub: pub}
}

// RegisterRoutes mounts the kind's routes on rg; writes go through authMW.
func (h *Handler[T, P]) RegisterRoutes(rg *gin.RouterGroup, authMW ...gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)

	authed := rg.Group("", authMW...)
	authed.POST("", h.create)
	authed.PUT("", h.update)
	authed.PUT("/:id", h.update)
	authed.DELETE("", h.delete)
	authed.DELETE("/:id", h.delete)
}

// list GET /{kind}, or a single item when id or slug is given.
func (h *Handler[T, P]) list(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		h.respondOne(c, func(ctx context.Context) (P, error) { return h.store.FindByID(ctx, id) })
		return
	}
	if slug := c.Query("slug"); slug != "" {
		h.respondOne(c, func(ctx context.Context) (P, error) { return h.store.FindBySlug(ctx, slug) })
		return
	}

	page := pagination.FromContext(c)
	q := ListQuery{Sort: c.Query("sort"), Offset: page.Offset, Limit: page.Limit}
	if h.desc.Filter != nil {
		q.Filter = h.desc.Filter(c)
	}
	items, total, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, total, page.HasMore(len(items), total))
}

// get GET /{kind}/:id
func (h *Handler[T, P]) get(c *gin.Context) {
	id := c.Param("id")
	h.respondOne(c, func(ctx context.Context) (P, error) { return h.store.FindByID(ctx, id) })
}

func (h *Handler[T, P]) respondOne(c *gin.Context, find func(context.Context) (P, error)) {
	item, err := find(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// create POST /{kind}  [auth]
func (h *Handler[T, P]) create(c *gin.Context) {
	upload, err := FileUpload(c, h.desc.FileField)
	if err != nil {
		response.Error(c, err)
		return
	}
	if upload != nil {
		defer upload.Close()
	}

	item, err := h.desc.Decode(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	created, err := h.pub.Publish(c.Request.Context(), item, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// update PUT /{kind}/:id or PUT /{kind}?id=  [auth]
func (h *Handler[T, P]) update(c *gin.Context) {
	upload, err := FileUpload(c, h.desc.FileField)
	if err != nil {
		response.Error(c, err)
		return
	}
	if upload != nil {
		defer upload.Close()
	}

	change, err := h.desc.Change(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id := firstNonEmpty(c.Param("id"), c.Query("id"), change.ID)
	if id == "" {
		response.Error(c, apperr.Invalid("id", "is required"))
		return
	}
	updated, err := h.pub.Revise(c.Request.Context(), id, change.Apply, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated)
}

// delete DELETE /{kind}/:id or DELETE /{kind}?id=  [auth]
func (h *Handler[T, P]) delete(c *gin.Context) {
	id := firstNonEmpty(c.Param("id"), c.Query("id"))
	if id == "" {
		response.Error(c, apperr.Invalid("id", "is required"))
		return
	}
	if err := h.pub.Retract(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
