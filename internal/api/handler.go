package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/balloon-scene/internal/models"
	"github.com/mr1hm/balloon-scene/internal/stream"
)

type SceneSource interface {
	Get(ctx context.Context) (*models.Scene, error)
}

type Handler struct {
	scenes      SceneSource
	broadcaster *stream.Broadcaster
	refresh     time.Duration
}

// NewHandler serves scenes from scenes. refresh is how often an open stream
// re-reads the cache; broadcaster may be nil, which disables streaming.
func NewHandler(scenes SceneSource, broadcaster *stream.Broadcaster, refresh time.Duration) *Handler {
	return &Handler{
		scenes:      scenes,
		broadcaster: broadcaster,
		refresh:     refresh,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/api/scene", h.getScene)
	r.GET("/api/scene/geojson", h.getSceneGeoJSON)
	r.GET("/api/scene/stream", h.streamScene)
	r.GET("/health", h.health)
}

func (h *Handler) getScene(c *gin.Context) {
	scene, err := h.scenes.Get(c.Request.Context())
	if err != nil {
		slog.Error("failed to get scene", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to build scene",
		})
		return
	}

	c.JSON(http.StatusOK, scene)
}

func (h *Handler) getSceneGeoJSON(c *gin.Context) {
	scene, err := h.scenes.Get(c.Request.Context())
	if err != nil {
		slog.Error("failed to get scene", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to build scene",
		})
		return
	}

	fc := toGeoJSON(scene)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// streamScene sends the current scene as a server-sent event and then every
// newer scene until the client goes away.
func (h *Handler) streamScene(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "streaming disabled",
		})
		return
	}

	ctx := c.Request.Context()
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	current, err := h.scenes.Get(ctx)
	if err != nil {
		slog.Error("failed to get scene for stream", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to build scene",
		})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	last := current.GeneratedAt
	c.SSEvent("scene", current)
	c.Writer.Flush()

	slog.Info("client subscribed to scene stream", "subscriber_id", id)

	ticker := time.NewTicker(h.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("client disconnected from scene stream", "subscriber_id", id)
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if !s.GeneratedAt.After(last) {
				continue
			}
			last = s.GeneratedAt
			c.SSEvent("scene", s)
			c.Writer.Flush()
		case <-ticker.C:
			// a stale cache rebuilds here and the result arrives on ch
			if _, err := h.scenes.Get(ctx); err != nil {
				slog.Warn("scene refresh for stream failed", "subscriber_id", id, "error", err)
			}
		}
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
