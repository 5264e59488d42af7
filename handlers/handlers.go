package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"stocks-simulator/middleware"
	"stocks-simulator/session"
	"stocks-simulator/templates"
	"stocks-simulator/trading"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Handler serves the simulator's HTML pages.
type Handler struct {
	svc      *trading.Service
	sessions *session.Manager
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *trading.Service, sessions *session.Manager) (*gin.Engine, error) {
	tmpl, err := templates.Parse(template.FuncMap{
		"usd": func(d decimal.Decimal) string { return trading.USD(d) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	h := &Handler{svc: svc, sessions: sessions}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.Logger(), gin.CustomRecovery(recovered), middleware.NoCache())

	// Public routes
	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)
	router.GET("/register", h.RegisterForm)
	router.POST("/register", h.Register)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middleware.RequireAuth(sessions))
	{
		auth.GET("/", h.Index)
		auth.GET("/buy", h.BuyForm)
		auth.POST("/buy", h.Buy)
		auth.GET("/sell", h.SellForm)
		auth.POST("/sell", h.Sell)
		auth.GET("/quote", h.QuoteForm)
		auth.POST("/quote", h.Quote)
		auth.GET("/history", h.History)
	}

	router.NoRoute(func(c *gin.Context) {
		apology(c, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	router.NoMethod(func(c *gin.Context) {
		apology(c, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return router, nil
}

func page(c *gin.Context, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["loggedIn"] = middleware.LoggedIn(c)
	c.HTML(http.StatusOK, name, data)
}

func apology(c *gin.Context, status int, message string) {
	c.HTML(status, "apology.html", gin.H{
		"title":    "Apology",
		"loggedIn": middleware.LoggedIn(c),
		"code":     status,
		"message":  message,
	})
}

// fail renders err as a user-facing apology. Errors outside the domain
// taxonomy are logged and shown as a generic 500.
func fail(c *gin.Context, err error) {
	var validation *trading.ValidationError
	var notFound *trading.NotFoundError

	switch {
	case errors.As(err, &validation):
		apology(c, http.StatusBadRequest, validation.Message)
	case errors.As(err, &notFound),
		errors.Is(err, trading.ErrUsernameTaken),
		errors.Is(err, trading.ErrInvalidCredentials),
		errors.Is(err, trading.ErrInsufficientFunds),
		errors.Is(err, trading.ErrInsufficientShares):
		apology(c, http.StatusForbidden, err.Error())
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		apology(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func recovered(c *gin.Context, err any) {
	log.WithField("panic", err).Error("Recovered from panic")
	apology(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	c.Abort()
}
