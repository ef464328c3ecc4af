package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voxform/internal/logger"
	"voxform/internal/service"
)

const (
	ContextKeySessionID = "session_id"

	// SessionHeader carries the session token for clients that do not keep cookies.
	SessionHeader = "X-Session-Token"
)

// Session resolves the caller's form session from the session cookie or the
// X-Session-Token header. A missing or invalid token starts a new session.
// The token is re-issued on every response.
func Session(tokens service.SessionTokens, cookieName string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		sessionID, isNew := tokens.Resolve(token)

		signed, expiresAt, err := tokens.Issue(sessionID)
		if err != nil {
			logger.Error(c.Request.Context(), "issuing session token failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
			})
			return
		}
		maxAge := int(time.Until(expiresAt).Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, signed, maxAge, "/", "", secure, true)
		c.Header(SessionHeader, signed)

		if isNew {
			logger.Debug(c.Request.Context(), "new form session", "session_id", sessionID)
		}
		c.Set(ContextKeySessionID, sessionID)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// GetSessionID returns the session resolved by Session, or "".
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
