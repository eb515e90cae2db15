package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

const (
	// CookieName is the session cookie
	CookieName = "session"

	accountKey = "auth.account"
	sessionErr = "auth.error"
)

// Middleware attaches the session account, if any, to each request
type Middleware struct {
	sessions     *SessionManager
	secureCookie bool
}

// NewMiddleware creates session middleware. secureCookie marks cookies Secure.
func NewMiddleware(sessions *SessionManager, secureCookie bool) *Middleware {
	return &Middleware{sessions: sessions, secureCookie: secureCookie}
}

// LoadSession verifies the session cookie and stores the account on the
// context. Requests without a valid session continue anonymously.
func (m *Middleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil {
			c.Set(sessionErr, ErrMissingSession)
			c.Next()
			return
		}
		account, err := m.sessions.Verify(token)
		if err != nil {
			c.Set(sessionErr, err)
			c.Next()
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

// RequireLogin rejects anonymous requests with 401
func (m *Middleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentAccount(c); !ok {
			err := ErrMissingSession
			if v, exists := c.Get(sessionErr); exists {
				err = v.(error)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.MessageOf(unauthorized(err))})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose session is missing or not admin with 403
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok || !account.IsAdmin() {
			err := apperrors.NewForbidden("Admin access required")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Message})
			return
		}
		c.Next()
	}
}

// StartSession issues a token for account and sets the session cookie
func (m *Middleware) StartSession(c *gin.Context, account Account) error {
	token, _, err := m.sessions.Issue(account)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.sessions.TTL().Seconds()), "/", "", m.secureCookie, true)
	return nil
}

// EndSession clears the session cookie
func (m *Middleware) EndSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secureCookie, true)
}

// CurrentAccount returns the account attached by LoadSession
func CurrentAccount(c *gin.Context) (Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return Account{}, false
	}
	account, ok := v.(Account)
	return account, ok
}
