package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"travelbot/internal/config"
	intdb "travelbot/internal/db"
	"travelbot/internal/repositories"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (a *App) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"message":    "travel assistant is running",
		"model":      a.Classifier != nil,
		"ws_clients": a.wsClients(),
	})
}

func (a *App) wsClients() int {
	if a.Hub == nil {
		return 0
	}
	return a.Hub.Clients()
}

func (a *App) DBCheck(c *gin.Context) {
	n, err := repositories.UserRepository{Store: a.store()}.Count(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "database query failed", err)
		return
	}
	db, d := a.DB, a.Dialect
	if db == nil {
		db = config.DB
	}
	if d == "" {
		d = intdb.DialectFor(config.Driver())
	}
	datasets := gin.H{}
	if db != nil {
		for _, t := range repositories.DatasetTables {
			datasets[t.Name] = d.HasTable(db, t.Name)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "users_in_db": n, "datasets": datasets})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "router is not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
