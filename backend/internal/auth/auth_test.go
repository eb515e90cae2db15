package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

func TestDemoAccounts_Authenticate(t *testing.T) {
	store := DemoAccounts()

	tests := []struct {
		name     string
		username string
		password string
		want     Account
		wantType apperrors.ErrorType
	}{
		{"user", "user", "user123", Account{Username: "user", Role: RoleUser}, ""},
		{"admin with whitespace", " admin ", "admin123 ", Account{Username: "admin", Role: RoleAdmin}, ""},
		{"wrong password", "admin", "user123", Account{}, apperrors.ErrorTypeUnauthorized},
		{"unknown user", "root", "root", Account{}, apperrors.ErrorTypeUnauthorized},
		{"missing password", "user", "  ", Account{}, apperrors.ErrorTypeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Authenticate(tt.username, tt.password)
			if tt.wantType != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionManager_RoundTrip(t *testing.T) {
	m, err := NewSessionManager("secret", time.Hour)
	require.NoError(t, err)

	token, expires, err := m.Issue(Account{Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	account, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Account{Username: "admin", Role: RoleAdmin}, account)
	assert.True(t, account.IsAdmin())
}

func TestSessionManager_Rejects(t *testing.T) {
	m, err := NewSessionManager("secret", time.Hour)
	require.NoError(t, err)
	token, _, err := m.Issue(Account{Username: "user", Role: RoleUser})
	require.NoError(t, err)

	t.Run("other key", func(t *testing.T) {
		other, err := NewSessionManager("other", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := m.Verify(token + "a")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredSession)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := m.Verify("")
		assert.ErrorIs(t, err, ErrMissingSession)
	})
}

func TestNewSessionManager_Validation(t *testing.T) {
	_, err := NewSessionManager("", time.Hour)
	assert.Error(t, err)
	_, err = NewSessionManager("secret", 0)
	assert.Error(t, err)
}

func newTestRouter(t *testing.T) (*gin.Engine, *Middleware) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions, err := NewSessionManager("secret", time.Hour)
	require.NoError(t, err)
	mw := NewMiddleware(sessions, false)

	r := gin.New()
	r.Use(mw.LoadSession())
	r.POST("/login/:name", func(c *gin.Context) {
		role := RoleUser
		if c.Param("name") == "admin" {
			role = RoleAdmin
		}
		require.NoError(t, mw.StartSession(c, Account{Username: c.Param("name"), Role: role}))
		c.Status(http.StatusOK)
	})
	r.POST("/logout", func(c *gin.Context) {
		mw.EndSession(c)
		c.Status(http.StatusOK)
	})
	r.GET("/me", mw.RequireLogin(), func(c *gin.Context) {
		account, _ := CurrentAccount(c)
		c.JSON(http.StatusOK, account)
	})
	r.GET("/admin", mw.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, mw
}

func login(t *testing.T, r *gin.Engine, name string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+name, nil))
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func get(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("anonymous", func(t *testing.T) {
		w := get(r, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Login required"}`, w.Body.String())

		w = get(r, "/admin", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Admin access required"}`, w.Body.String())
	})

	t.Run("user session", func(t *testing.T) {
		cookie := login(t, r, "user")
		w := get(r, "/me", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"username":"user","role":"user"}`, w.Body.String())

		assert.Equal(t, http.StatusForbidden, get(r, "/admin", cookie).Code)
	})

	t.Run("admin session", func(t *testing.T) {
		cookie := login(t, r, "admin")
		assert.Equal(t, http.StatusNoContent, get(r, "/admin", cookie).Code)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		w := get(r, "/me", &http.Cookie{Name: CookieName, Value: "not-a-token"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
		header := w.Header().Get("Set-Cookie")
		assert.True(t, strings.HasPrefix(header, CookieName+"=;"), header)
		assert.Contains(t, header, "Max-Age=0")
	})
}
