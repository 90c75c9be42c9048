package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pageza/smartplate/internal/logger"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "smartplate_session"

const ctxKeySessionID = "session_id"

// SessionClaims is the JWT payload of the session cookie
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates session cookies
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessionManager creates a manager signing with secret. Tokens expire
// after ttl; the cookie itself lives until the browser closes.
func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Sign creates a token for sid
func (m *SessionManager) Sign(sid string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return signed, nil
}

// Parse validates a token and returns its session id
func (m *SessionManager) Parse(tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrap(err, "parse session token")
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}

// Middleware makes sure every request has a session id, issuing a new cookie
// when the current one is missing or invalid.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sid string
		if raw, err := c.Cookie(SessionCookieName); err == nil {
			sid, _ = m.Parse(raw)
		}

		if sid == "" {
			sid = uuid.NewString()
			token, err := m.Sign(sid)
			if err != nil {
				logger.FromContext(c.Request.Context()).WithError(err).Error("could not start session")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, token, 0, "/", "", m.secure, true)
		}

		c.Set(ctxKeySessionID, sid)
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logger.WithLogger(ctx, logger.FromContext(ctx).WithField("session_id", sid)))
		c.Next()
	}
}

// SessionID returns the session id set by the session middleware
func SessionID(c *gin.Context) string {
	return c.GetString(ctxKeySessionID)
}
