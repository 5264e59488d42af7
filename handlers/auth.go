package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginForm forgets any current session and shows the login form.
func (h *Handler) LoginForm(c *gin.Context) {
	h.sessions.Logout(c)
	page(c, "login.html", "Log In", nil)
}

// Login checks the credentials and starts a new session.
func (h *Handler) Login(c *gin.Context) {
	h.sessions.Logout(c)

	userID, err := h.svc.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.sessions.Login(c, userID); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout ends the session. It is safe to call without one.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	c.Redirect(http.StatusFound, "/")
}

// RegisterForm forgets any current session and shows the registration form.
func (h *Handler) RegisterForm(c *gin.Context) {
	h.sessions.Logout(c)
	page(c, "register.html", "Register", nil)
}

// Register creates the account; the user still has to log in.
func (h *Handler) Register(c *gin.Context) {
	h.sessions.Logout(c)

	if _, err := h.svc.Register(c.Request.Context(), c.PostForm("username"), c.PostForm("password")); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
