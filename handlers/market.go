package handlers

import (
	"github.com/gin-gonic/gin"
)

// QuoteForm shows the symbol lookup form.
func (h *Handler) QuoteForm(c *gin.Context) {
	page(c, "quote.html", "Quote", nil)
}

// Quote shows the current price of the submitted symbol.
func (h *Handler) Quote(c *gin.Context) {
	q, err := h.svc.Quote(c.Request.Context(), c.PostForm("symbol"))
	if err != nil {
		fail(c, err)
		return
	}
	page(c, "quoted.html", "Quoted", gin.H{"quote": q})
}
