package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tierlist/pkg/response"
)

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// VAPIDPublicKey 推送公钥
// @Summary 浏览器订阅所需的 VAPID 公钥
// @Tags 推送
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/push/vapid-public-key [get]
func (h *Handler) VAPIDPublicKey(c *gin.Context) {
	key := h.pushService.PublicKey()
	if key == "" {
		response.ServiceUnavailable(c, "push notifications not configured")
		return
	}
	response.Success(c, gin.H{"publicKey": key})
}

// Subscribe 注册推送
// @Summary 保存浏览器推送订阅
// @Tags 推送
// @Accept json
// @Produce json
// @Param request body subscribeRequest true "订阅"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/push/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid subscription data")
		return
	}
	if err := h.pushService.Subscribe(c.Request.Context(), currentUser(c), req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Unsubscribe 取消推送
// @Summary 删除当前用户的推送订阅
// @Tags 推送
// @Accept json
// @Produce json
// @Param request body unsubscribeRequest true "endpoint"
// @Success 200 {object} response.Response
// @Router /api/push/unsubscribe [delete]
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "endpoint required")
		return
	}
	if err := h.pushService.Unsubscribe(c.Request.Context(), currentUser(c), req.Endpoint); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// PushStatus 订阅状态
// @Summary 当前用户是否已订阅
// @Tags 推送
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/push/status [get]
func (h *Handler) PushStatus(c *gin.Context) {
	ok, err := h.pushService.Subscribed(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"subscribed": ok})
}
