package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rentals/internal/http/middleware"
	"rentals/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func (h *Handlers) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts same-host requests, clients without an Origin header and the
// configured CORS origins.
func (h *Handlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, o := range h.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// Events upgrades to a WebSocket and streams change events. ?since=<seq> replays the
// current state of every row changed after that sequence number first.
func (h *Handlers) Events(c *gin.Context) {
	if h.Hub == nil {
		respondError(c, http.StatusServiceUnavailable, "events_unavailable", "event stream belum aktif", nil)
		return
	}
	var since int64
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			respondError(c, http.StatusBadRequest, "invalid_since", "since tidak valid", nil)
			return
		}
		since = v
	}

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		utils.LogEvent(middleware.GetRequestID(c), "events", "upgrade", err.Error())
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "events", "subscribe", "since="+strconv.FormatInt(since, 10))
	h.Hub.Serve(conn, since)
}
