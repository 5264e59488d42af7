package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stocks-simulator/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockSessionReader is a mock implementation of SessionReader for testing
type MockSessionReader struct {
	mock.Mock
}

func (m *MockSessionReader) UserID(c *gin.Context) (uint, error) {
	args := m.Called(c)
	return args.Get(0).(uint), args.Error(1)
}

func newProtectedRouter(sessions SessionReader) *gin.Engine {
	r := gin.New()
	r.Use(NoCache())
	r.GET("/private", RequireAuth(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, "user %d", UserID(c))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name         string
		userID       uint
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Authenticated",
			userID:       7,
			expectedCode: http.StatusOK,
			expectedBody: "user 7",
		},
		{
			name:         "No Session",
			err:          session.ErrNoSession,
			expectedCode: http.StatusFound,
		},
		{
			name:         "Store Failure",
			err:          errors.New("redis down"),
			expectedCode: http.StatusFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionReader)
			sessions.On("UserID", mock.Anything).Return(tt.userID, tt.err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			newProtectedRouter(sessions).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusFound {
				assert.Equal(t, "/login", w.Header().Get("Location"))
			} else {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
			sessions.AssertExpectations(t)
		})
	}
}

func TestNoCache(t *testing.T) {
	sessions := new(MockSessionReader)
	sessions.On("UserID", mock.Anything).Return(uint(0), session.ErrNoSession)

	w := httptest.NewRecorder()
	newProtectedRouter(sessions).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
}

func TestLoggedIn(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, LoggedIn(c))

	c.Set(UserIDKey, uint(3))
	assert.True(t, LoggedIn(c))
	assert.Equal(t, uint(3), UserID(c))
}

func TestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Logger())
	r.GET("/teapot", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
