package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CookieName is the browser cookie carrying the session token.
const CookieName = "session"

// ErrNoSession means the request carries no valid session.
var ErrNoSession = errors.New("no session")

type claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager binds browser sessions to user ids. The cookie holds a signed
// token naming a session id; the session is live only while its id is
// present in Redis.
type Manager struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager returns a session manager. secure marks cookies HTTPS-only.
func NewManager(rdb *redis.Client, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		rdb:    rdb,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Login starts a new session for userID and sets the session cookie.
func (m *Manager) Login(c *gin.Context, userID uint) error {
	now := time.Now()
	sid := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := m.rdb.Set(c.Request.Context(), sessionKey(sid), userID, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, signed, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// UserID returns the user bound to the request's session, or ErrNoSession.
func (m *Manager) UserID(c *gin.Context) (uint, error) {
	cl, err := m.parse(c)
	if err != nil {
		return 0, ErrNoSession
	}

	stored, err := m.rdb.Get(c.Request.Context(), sessionKey(cl.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	id, err := strconv.ParseUint(stored, 10, 64)
	if err != nil || uint(id) != cl.UserID {
		return 0, ErrNoSession
	}
	return cl.UserID, nil
}

// Logout ends the request's session, if any, and clears the cookie. It
// never fails; a Redis error is logged and the key is left to expire.
func (m *Manager) Logout(c *gin.Context) {
	if cl, err := m.parse(c); err == nil {
		if err := m.rdb.Del(c.Request.Context(), sessionKey(cl.ID)).Err(); err != nil {
			log.WithError(err).Warn("Failed to delete session")
		}
	}

	if _, err := c.Cookie(CookieName); err == nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
	}
}

func (m *Manager) parse(c *gin.Context) (*claims, error) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, ErrNoSession
	}

	cl := &claims{}
	token, err := jwt.ParseWithClaims(raw, cl, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || cl.ID == "" {
		return nil, ErrNoSession
	}
	return cl, nil
}
