package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for /api/routes.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "backend rentals berjalan"})
}

func (h *Handlers) DBCheck(c *gin.Context) {
	var err error
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = h.DB.PingContext(ctx)
	} else {
		err = intconfig.EnsureDB(c.Request.Context())
	}
	if err != nil {
		msg := "gagal ping database: " + err.Error()
		if intdb.IsBadConn(err) {
			msg = "database belum terhubung"
		}
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", msg, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK"})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "not_ready", "router belum siap", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
