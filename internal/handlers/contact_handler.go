package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/notifier"
)

// POST /contact
func (h *Handler) Contact(c *gin.Context) {
	var form notifier.ContactForm
	if !bind(c, &form) {
		return
	}

	err := notifier.SendContactMessage(c.Request.Context(), h.Mailer, h.ContactTo, form)
	if errors.Is(err, notifier.ErrContactSend) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not send your message right now. Please try again later."})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Thanks! Your message has been sent."})
}
