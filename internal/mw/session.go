package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-rms-console/internal/policy"
	"campus-rms-console/internal/session"
)

const sessionKey = "rms.session"

// TokenHeader carries the session token for clients without cookies.
const TokenHeader = "X-Session-Token"

// SessionResolver resolves a token to its live session.
type SessionResolver interface {
	Lookup(ctx context.Context, token string) (*session.Session, error)
}

// TokenFrom extracts the session token: bearer authorization first, then the
// token header, then the cookie.
func TokenFrom(c *gin.Context, cookieName string) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token := c.GetHeader(TokenHeader); token != "" {
		return token
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// Session aborts with 401 unless the request carries a live session.
func Session(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := resolver.Lookup(c.Request.Context(), TokenFrom(c, cookieName))
		if errors.Is(err, session.ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": session.ErrNoSession.Error()})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session resolved by Session.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

// ErrSectionDenied is the message of a policy denial.
const ErrSectionDenied = "You do not have permission to access this section"

// RequireSection aborts with 403 unless the session's role may see section.
func RequireSection(section policy.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": session.ErrNoSession.Error()})
			return
		}
		if !policy.Allows(sess.Identity.Role, section) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrSectionDenied})
			return
		}
		c.Next()
	}
}
