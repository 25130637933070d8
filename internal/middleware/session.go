package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/internal/session"
)

// SessionIDKey is the gin context key holding the visitor's session ID.
const SessionIDKey = "sessionID"

// Session gives every visitor an opaque session ID in an HttpOnly cookie so
// handlers can keep state (such as the email pending verification) in the
// session store.
func Session(cfg *config.Config) gin.HandlerFunc {
	secure := cfg.Env == "production"
	maxAge := int(cfg.SessionTTL.Seconds())

	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.SessionCookieName)
		if err != nil || sid == "" {
			sid, err = session.NewSessionID()
			if err != nil {
				log.Printf("WARN: could not create session ID: %v", err)
				c.Next()
				return
			}
			c.SetCookie(cfg.SessionCookieName, sid, maxAge, "/", "", secure, true)
		}

		c.Set(SessionIDKey, sid)
		c.Next()
	}
}
