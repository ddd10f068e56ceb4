package middleware

import "github.com/gin-gonic/gin"

const (
	CtxKeyRequestID = "request_id"
	CtxKeyUserID    = "user_id"
)

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string { return c.GetString(CtxKeyUserID) }

// RequestIDFrom returns the id assigned by the RequestID middleware.
func RequestIDFrom(c *gin.Context) string { return c.GetString(CtxKeyRequestID) }
