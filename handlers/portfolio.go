package handlers

import (
	"net/http"
	"strings"

	"stocks-simulator/middleware"
	"stocks-simulator/trading"

	"github.com/gin-gonic/gin"
)

// Index shows the portfolio.
func (h *Handler) Index(c *gin.Context) {
	portfolio, err := h.svc.Portfolio(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	page(c, "index.html", "Portfolio", gin.H{"portfolio": portfolio})
}

// BuyForm shows the purchase form.
func (h *Handler) BuyForm(c *gin.Context) {
	page(c, "buy.html", "Buy", nil)
}

// Buy purchases shares and returns to the portfolio.
func (h *Handler) Buy(c *gin.Context) {
	quantity, err := trading.ParseQuantity(c.PostForm("quantity"))
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := h.svc.Buy(c.Request.Context(), middleware.UserID(c), c.PostForm("symbol"), quantity); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// SellForm lists the symbols the user currently holds.
func (h *Handler) SellForm(c *gin.Context) {
	holdings, err := h.svc.Holdings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	page(c, "sell.html", "Sell", gin.H{"holdings": holdings})
}

// Sell sells shares of a held symbol and returns to the portfolio.
func (h *Handler) Sell(c *gin.Context) {
	quantity, err := trading.ParseQuantity(c.PostForm("quantity"))
	if err != nil {
		fail(c, err)
		return
	}

	// Options in the sell form carry "SYMBOL,shares".
	symbol, _, _ := strings.Cut(c.PostForm("symbol"), ",")

	if _, err := h.svc.Sell(c.Request.Context(), middleware.UserID(c), symbol, quantity); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// History lists every trade, newest first.
func (h *Handler) History(c *gin.Context) {
	transactions, err := h.svc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	page(c, "history.html", "History", gin.H{"transactions": transactions})
}
