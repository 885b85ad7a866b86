package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/infra"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/worker"
)

// Health reports liveness plus a snapshot of the async pipeline: depth of
// the render and email queues, their dead letter lists, and the SMTP
// circuit breaker state. The endpoint goes unhealthy only on DB or Redis
// failure; a tripped breaker or a deep DLQ still returns 200 so a stalled
// mail relay does not take the order desk out of rotation.
func Health(db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		queues := gin.H{}
		if redisStatus == "connected" {
			for _, q := range []string{worker.QueueRender, worker.QueueEmail} {
				depth, err := rdb.LLen(ctx, q).Result()
				if err != nil {
					continue
				}
				dead, err := worker.DLQLength(ctx, rdb, q)
				if err != nil {
					continue
				}
				queues[q] = gin.H{"pending": depth, "dead": dead}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":           status == http.StatusOK,
			"db":           dbStatus,
			"redis":        redisStatus,
			"smtp_circuit": smtpCB.State().String(),
			"queues":       queues,
		})
	}
}
