package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewManager(rdb, "test-secret", ttl, false), mr
}

// newContext builds a gin context for a request carrying the given cookies.
func newContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(cookie)
	}
	return c, w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == CookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestLoginThenUserID(t *testing.T) {
	m, mr := setupManager(t, time.Hour)

	c, w := newContext()
	require.NoError(t, m.Login(c, 42))

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Len(t, mr.Keys(), 1)

	next, _ := newContext(cookie)
	userID, err := m.UserID(next)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestUserID_NoCookie(t *testing.T) {
	m, _ := setupManager(t, time.Hour)

	c, _ := newContext()
	_, err := m.UserID(c)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserID_TamperedToken(t *testing.T) {
	m, _ := setupManager(t, time.Hour)

	c, w := newContext()
	require.NoError(t, m.Login(c, 7))
	cookie := sessionCookie(t, w)
	cookie.Value += "x"

	next, _ := newContext(cookie)
	_, err := m.UserID(next)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserID_WrongSecret(t *testing.T) {
	m, mr := setupManager(t, time.Hour)

	c, w := newContext()
	require.NoError(t, m.Login(c, 7))
	cookie := sessionCookie(t, w)

	other := NewManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "other-secret", time.Hour, false)
	next, _ := newContext(cookie)
	_, err := other.UserID(next)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserID_ExpiredInRedis(t *testing.T) {
	m, mr := setupManager(t, time.Minute)

	c, w := newContext()
	require.NoError(t, m.Login(c, 9))
	cookie := sessionCookie(t, w)

	mr.FastForward(2 * time.Minute)

	next, _ := newContext(cookie)
	_, err := m.UserID(next)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogout_IsIdempotent(t *testing.T) {
	m, mr := setupManager(t, time.Hour)

	c, w := newContext()
	require.NoError(t, m.Login(c, 5))
	cookie := sessionCookie(t, w)

	for i := 0; i < 2; i++ {
		out, outW := newContext(cookie)
		m.Logout(out)

		cleared := sessionCookie(t, outW)
		assert.Empty(t, cleared.Value)
		assert.True(t, cleared.MaxAge < 0)
		assert.Empty(t, mr.Keys())

		check, _ := newContext(cookie)
		_, err := m.UserID(check)
		assert.ErrorIs(t, err, ErrNoSession)
	}

	bare, _ := newContext()
	m.Logout(bare)
	_, err := m.UserID(bare)
	assert.ErrorIs(t, err, ErrNoSession)
}
