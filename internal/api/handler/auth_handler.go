package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/internal/metrics"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/pkg/apperr"
	"github.com/d60-Lab/tierlist/pkg/logger"
	"github.com/d60-Lab/tierlist/pkg/response"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Pseudo   string `json:"pseudo" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Pseudo string `json:"pseudo" binding:"required"`
}

type userResponse struct {
	User *model.User `json:"user"`
}

// startSession 建立会话并写 cookie
func (h *Handler) startSession(c *gin.Context, userID string) bool {
	cookie, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, err)
		return false
	}
	http.SetCookie(c.Writer, cookie)
	return true
}

// Register 注册
// @Summary 注册新用户
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response{data=userResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email, pseudo and password are required")
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Pseudo, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	response.Created(c, userResponse{User: user})
}

// Login 登录
// @Summary 邮箱密码登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=userResponse}
// @Failure 401 {object} response.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	if id := currentUser(c); id != "" {
		if user, err := h.authService.GetUser(c.Request.Context(), id); err == nil {
			response.Success(c, userResponse{User: user})
			return
		}
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}
	user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("password", "failed").Inc()
		response.Error(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	metrics.AuthLoginsTotal.WithLabelValues("password", "ok").Inc()
	response.Success(c, userResponse{User: user})
}

// Check 会话探测
// @Summary 查询当前会话
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/auth/check [get]
func (h *Handler) Check(c *gin.Context) {
	id := currentUser(c)
	if id == "" {
		response.JSON(c, http.StatusUnauthorized, "not authenticated", gin.H{"authenticated": false})
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuthentication {
			response.JSON(c, http.StatusUnauthorized, "not authenticated", gin.H{"authenticated": false})
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"authenticated": true, "user": user})
}

// Logout 退出
// @Summary 结束会话
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessions.CookieName()); err == nil {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			logger.Warn("revoke session failed", zap.Error(err))
		}
	}
	http.SetCookie(c.Writer, h.sessions.ClearCookie())
	response.Success(c, nil)
}

// UpdateUser 修改昵称
// @Summary 修改昵称
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body updateUserRequest true "新昵称"
// @Success 200 {object} response.Response{data=userResponse}
// @Failure 400 {object} response.Response
// @Router /api/auth/user [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "pseudo is required")
		return
	}
	user, err := h.authService.UpdatePseudo(c.Request.Context(), currentUser(c), req.Pseudo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, userResponse{User: user})
}

// GoogleLogin 跳转 Google 授权
// @Summary Google 登录
// @Tags 认证
// @Success 302
// @Failure 404 {object} response.Response
// @Router /api/auth/google [get]
func (h *Handler) GoogleLogin(c *gin.Context) {
	url, err := h.oauthService.AuthCodeURL()
	if errors.Is(err, service.ErrOAuthDisabled) {
		response.NotFound(c, "google login is not configured")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback Google 回调
// @Summary Google 登录回调
// @Tags 认证
// @Param state query string true "state"
// @Param code query string true "code"
// @Success 302
// @Failure 401 {object} response.Response
// @Router /api/auth/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	user, err := h.oauthService.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if errors.Is(err, service.ErrOAuthDisabled) {
		response.NotFound(c, "google login is not configured")
		return
	}
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("google", "failed").Inc()
		response.Error(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	metrics.AuthLoginsTotal.WithLabelValues("google", "ok").Inc()
	c.Redirect(http.StatusFound, h.oauthSuccessURL)
}
