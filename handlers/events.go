package handlers

import (
	"io"
	"net/http"
	"time"

	"companionhub/middleware"
	"companionhub/services/notification"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventsHandler streams the caller's notifications as server-sent events.
type EventsHandler struct {
	Subscriber notification.Subscriber
	Heartbeat  time.Duration
	Logger     *zap.Logger
}

func NewEventsHandler(sub notification.Subscriber, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{Subscriber: sub, Heartbeat: 25 * time.Second, Logger: logger}
}

// Stream handles GET /api/events/stream.
func (h *EventsHandler) Stream(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	events, err := h.Subscriber.Subscribe(ctx, notification.UserChannel(user.ID))
	if err != nil {
		utils.RespondError(c, h.Logger, utils.InternalError("subscribe failed", err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"userId": user.ID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	h.Logger.Debug("event stream opened", zap.String("userId", user.ID))
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
	h.Logger.Debug("event stream closed", zap.String("userId", user.ID))
}
