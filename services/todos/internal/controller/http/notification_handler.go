package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/usecase"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	DefaultKeepAlive = 25 * time.Second
	writeWait        = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
	keepAlive           time.Duration
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, logger *logger.Logger, keepAlive time.Duration) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		logger:              logger.With("component", "notifications"),
		keepAlive:           keepAlive,
	}
}

// GetNotifications godoc
// @Summary      Get stored notifications
// @Description  Newest first, with the number of unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool false "Only unread notifications"
// @Param        limit query int false "Page size (default 50, max 100)"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	limit, offset := pagination(c)

	notifications, unread, err := h.notificationUseCase.List(c.Request.Context(), session.UserID, unreadOnly, limit, offset)
	if err != nil {
		respondError(c, h.logger, err, "get notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread":        unread,
		"offset":        offset,
	})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	if err := h.notificationUseCase.MarkRead(c.Request.Context(), session.UserID, c.Param("id")); err != nil {
		respondError(c, h.logger, err, "mark notification read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	updated, err := h.notificationUseCase.MarkAllRead(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, h.logger, err, "mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func subscribeInput(c *gin.Context) entity.SubscribeInput {
	input := entity.SubscribeInput{
		UserID:      c.Query("userId"),
		LastEventID: c.Query("lastEventId"),
	}
	if input.LastEventID == "" {
		input.LastEventID = c.GetHeader("Last-Event-ID")
	}
	return input
}

// Subscribe is open to any authenticated caller. Without userId the stream
// carries every event on the bus, and userId may name any user, so callers
// see other users' todo titles across organizations. The live feed is global
// on purpose; the userId filter narrows it but is not an access check.
//
// Subscribe godoc
// @Summary      Live notifications (Server-Sent Events)
// @Description  Streams notifications published after the request starts. Each event carries its id as the SSE id. Without userId every event is streamed.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        userId query string false "Only events for this user"
// @Param        lastEventId query string false "Accepted for reconnecting clients; missed events are not replayed"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /notifications/subscribe [get]
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	if _, ok := sessionFrom(c); !ok {
		return
	}

	ctx := c.Request.Context()
	stream, err := h.notificationUseCase.Subscribe(ctx, subscribeInput(c))
	if err != nil {
		respondError(c, h.logger, err, "subscribe")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// An initial comment commits the headers so clients see the stream open.
	if _, err := io.WriteString(c.Writer, ": connected\n\n"); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-stream:
			if !ok {
				return
			}
			if err := sse.Encode(c.Writer, sse.Event{Id: item.ID, Data: item.Data}); err != nil {
				h.logger.Debug("SSE write failed: %v", err)
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

// HandleWebSocket has the same visibility as Subscribe: any authenticated
// caller gets the global feed, or the feed of whichever userId it names.
//
// HandleWebSocket godoc
// @Summary      Live notifications (WebSocket)
// @Description  Each message is a JSON object {"id": cursor, "data": event}. The token may be passed as ?token= because browsers cannot set headers on WebSocket requests.
// @Tags         notifications
// @Param        token query string false "Session token"
// @Param        userId query string false "Only events for this user"
// @Success      101
// @Router       /notifications/ws [get]
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	// A hijacked connection's request context is not cancelled on
	// disconnect, so the read loop below cancels this one instead.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	stream, err := h.notificationUseCase.Subscribe(ctx, subscribeInput(c))
	if err != nil {
		respondError(c, h.logger, err, "subscribe")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket connected for user %s", session.UserID)

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket disconnected for user %s", session.UserID)
			return
		case item, ok := <-stream:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(item); err != nil {
				h.logger.Warn("WebSocket write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
