package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/session"
)

const defaultKeepAlive = 15 * time.Second

type Handler struct {
	manager   *session.Manager
	keepAlive time.Duration
}

func New(manager *session.Manager) *Handler {
	return &Handler{manager: manager, keepAlive: defaultKeepAlive}
}

// Register mounts the session routes. optionalAuth lets anonymous callers
// read "no identity"; the event stream needs a session.
func (h *Handler) Register(rg *gin.RouterGroup, optionalAuth, requireAuth gin.HandlerFunc) {
	rg.GET("/session", optionalAuth, h.GetSession)
	rg.GET("/session/events", requireAuth, h.StreamEvents)
}

// GetSession returns the caller's current identity, or null.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"identity": h.current(c)})
}

// current prefers the manager's view, which reflects changes (such as a
// completed verification) newer than the token's claims.
func (h *Handler) current(c *gin.Context) *identity.Identity {
	ident := auth.CurrentIdentity(c)
	if ident == nil {
		return nil
	}
	if latest, ok := h.manager.Current(ident.UID); ok {
		return latest
	}
	return ident
}

// StreamEvents streams the caller's session-state changes using
// Server-Sent Events. The stream ends after sign-out or when the manager
// shuts down.
func (h *Handler) StreamEvents(c *gin.Context) {
	ident := h.current(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	sub := h.manager.Subscribe(ident.UID)
	defer sub.Close()

	writeEvent(c, "initial", session.Event{UserID: ident.UID, Identity: ident, At: time.Now().UTC()})
	flusher.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if ev.Identity == nil {
				writeEvent(c, "signed_out", ev)
				flusher.Flush()
				return
			}
			writeEvent(c, "session", ev)
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, name string, ev session.Event) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
}
