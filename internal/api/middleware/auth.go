package middleware

import (
	"errors"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/internal/session"
	"github.com/d60-Lab/tierlist/pkg/logger"
	"github.com/d60-Lab/tierlist/pkg/response"
)

// Session resolves the session cookie, if any, and stores the user id on the
// context. Anonymous requests pass through.
func Session(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessions.CookieName())
		if err != nil || token == "" {
			c.Next()
			return
		}
		userID, err := sessions.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(CtxKeyUserID, userID)
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.Scope().SetUser(sentry.User{ID: userID})
			}
		case errors.Is(err, session.ErrNotFound):
		default:
			logger.Warn("session lookup failed", zap.Error(err))
		}
		c.Next()
	}
}

// RequireAuth 未登录返回 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			response.Unauthorized(c, "unauthorized")
			return
		}
		c.Next()
	}
}
