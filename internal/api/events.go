package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/session"
)

const (
	eventBuffer  = 64
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventsHandler streams session events to a websocket client. A client
// that falls behind by more than eventBuffer events loses the overflow.
func (r *Router) eventsHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.logger.Warn("Failed to upgrade events connection", zap.Error(err))
		return
	}
	defer conn.Close()

	events := make(chan session.Event, eventBuffer)
	unsubscribe := r.manager.Session().Subscribe(func(ev session.Event) {
		select {
		case events <- ev:
		default:
			r.logger.Debug("Dropping event for slow client", zap.String("type", string(ev.Type)))
		}
	})
	defer unsubscribe()

	// The reader only watches for the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				r.logger.Debug("Events connection closed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
			return
		}
	}
}

// postsHandler renders the post list for the request's query string,
// treating it as an address change
func (r *Router) postsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	if err := r.manager.Navigate(ctx, c.Request.URL.RawQuery); err != nil {
		code, message := errorCode(err)
		r.logger.Warn("Navigation failed", zap.Int("code", code), zap.Error(err))
		v := r.manager.Render(ctx)
		v.Error = message
		c.JSON(http.StatusOK, v)
		return
	}
	c.JSON(http.StatusOK, r.manager.Render(ctx))
}
