package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/pkg/jwt"
	"github.com/podcastify/core/internal/pkg/response"
)

const ContextKeyUserID = "user_id"

// TokenVerifier validates a raw token issued by the identity provider.
type TokenVerifier interface {
	Parse(token string) (*jwt.Claims, error)
}

// Auth rejects requests without a valid bearer or cookie token with a 401 envelope.
func Auth(v TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := v.Parse(extractToken(c, cookieName))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.Identity())
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid token is present, but does not block the request.
func OptionalAuth(v TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c, cookieName); token != "" {
			if claims, err := v.Parse(token); err == nil {
				c.Set(ContextKeyUserID, claims.Identity())
			}
		}
		c.Next()
	}
}

// AdminGate guards admin pages. Unauthenticated visitors are redirected to
// loginPath with the original location in ?next=. Only loginPath itself passes
// through; an empty or root loginPath exempts nothing.
func AdminGate(v TokenVerifier, cookieName, loginPath string) gin.HandlerFunc {
	login := strings.TrimRight(loginPath, "/")
	return func(c *gin.Context) {
		path := strings.TrimRight(c.Request.URL.Path, "/")
		if login != "" && path == login {
			c.Next()
			return
		}
		claims, err := v.Parse(extractToken(c, cookieName))
		if err != nil {
			target := login + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Set(ContextKeyUserID, claims.Identity())
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if an auth middleware accepted the request's token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context, cookieName string) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if cookieName != "" {
		if raw, err := c.Cookie(cookieName); err == nil {
			if token := NormalizeToken(raw); token != "" {
				return token
			}
		}
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
