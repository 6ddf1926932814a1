package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/internal/wish/service"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
)

// User-facing messages, in the landing page's language.
const (
	MsgMissingFields = "Vui lòng điền đầy đủ thông tin"
	MsgNotFound      = "Không tìm thấy lời chúc"
	MsgDeleted       = "Đã xóa lời chúc thành công"
	MsgSaveFailed    = "Không thể lưu lời chúc"
	MsgInternal      = "Lỗi máy chủ"
)

// Handler serves the /wishes resource.
type Handler struct {
	svc   service.Service
	write []gin.HandlerFunc
	admin []gin.HandlerFunc
	live  gin.HandlerFunc
}

type Option func(*Handler)

// WithWriteMiddleware runs mw before POST and DELETE (rate limiting).
func WithWriteMiddleware(mw ...gin.HandlerFunc) Option {
	return func(h *Handler) { h.write = append(h.write, mw...) }
}

// WithAdminMiddleware runs mw before DELETE (admin guard).
func WithAdminMiddleware(mw ...gin.HandlerFunc) Option {
	return func(h *Handler) { h.admin = append(h.admin, mw...) }
}

// WithLive mounts the websocket feed at /wishes/live.
func WithLive(live gin.HandlerFunc) Option {
	return func(h *Handler) { h.live = live }
}

func NewHandler(svc service.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register mounts the routes under rg (normally the /api group).
func (h *Handler) Register(rg gin.IRouter) {
	w := rg.Group("/wishes")
	w.GET("", h.List)
	w.POST("", chain(h.Create, h.write)...)
	w.DELETE("/:id", chain(h.Delete, h.write, h.admin)...)
	if h.live != nil {
		w.GET("/live", h.live)
	}
}

func chain(final gin.HandlerFunc, groups ...[]gin.HandlerFunc) []gin.HandlerFunc {
	var out []gin.HandlerFunc
	for _, g := range groups {
		out = append(out, g...)
	}
	return append(out, final)
}

// List returns every wish in stored order.
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context()))
}

// Create accepts { author, content } and returns the stored wish.
func (h *Handler) Create(c *gin.Context) {
	var req service.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debugf("create wish: bad body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgMissingFields})
		return
	}
	w, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// Delete removes the wish with the numeric :id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		// an id without digits cannot match any stored wish
		c.JSON(http.StatusNotFound, gin.H{"error": MsgNotFound})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgDeleted})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wish.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgMissingFields})
	case errors.Is(err, wish.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": MsgNotFound})
	case errors.Is(err, wish.ErrPersist):
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgSaveFailed})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgInternal})
	}
}
