package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/pkg/database"
	"github.com/d60-Lab/tierlist/pkg/logger"
	"github.com/d60-Lab/tierlist/pkg/response"
)

// Health 存活探针
// @Summary 存活检查
// @Tags 运维
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// Ready 就绪探针：数据库与 Redis 可用
// @Summary 就绪检查
// @Tags 运维
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /ready [get]
func (h *Handler) Ready(c *gin.Context) {
	checks := gin.H{"database": "ok"}
	ready := true
	if err := database.Ping(h.db); err != nil {
		logger.Warn("readiness: database ping failed", zap.Error(err))
		checks["database"] = "down"
		ready = false
	}
	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("readiness: redis ping failed", zap.Error(err))
			checks["redis"] = "down"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if !ready {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Response{Code: http.StatusServiceUnavailable, Message: "not ready", Data: checks})
		return
	}
	response.Success(c, checks)
}
