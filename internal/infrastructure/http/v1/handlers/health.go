package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appctx "woodline/internal/core/context"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		redis:   redisClient,
		started: time.Now(),
	}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready. The database is required; Redis only
// carries notifications and degrades readiness, not availability.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{}
	status := http.StatusOK

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "down: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	c.JSON(status, gin.H{
		"status": http.StatusText(status),
		"checks": checks,
	})
}

// Info handles GET /health/info. Identity is optional; authenticated
// callers get theirs echoed back.
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	}
	if user := appctx.GetUser(c.Request.Context()); user != nil {
		info["user_id"] = user.UserID
		info["role"] = user.Role
	}
	c.JSON(http.StatusOK, info)
}
