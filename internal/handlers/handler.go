// Package handlers holds the gin handlers for the shop and staff API.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/cart"
	"github.com/Keoroanthony/go-storefront/internal/catalog"
	"github.com/Keoroanthony/go-storefront/internal/checkout"
	"github.com/Keoroanthony/go-storefront/internal/live"
	"github.com/Keoroanthony/go-storefront/internal/media"
	"github.com/Keoroanthony/go-storefront/internal/notifier"
	"github.com/Keoroanthony/go-storefront/internal/orders"
	"github.com/Keoroanthony/go-storefront/internal/payments"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

const CartKey = "cart_sid"

type Handler struct {
	Catalog   *catalog.Service
	Cart      *cart.Service
	Checkout  *checkout.Service
	Orders    *orders.Service
	Payments  *payments.Service
	Media     *media.Store
	Mailer    notifier.Mailer
	ContactTo string
	Live      *live.Hub
}

// CartSession gives every visitor a cart id kept in the session cookie.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if sid, ok := sess.Get(CartKey).(string); !ok || sid == "" {
			sess.Set(CartKey, uuid.NewString())
			if err := sess.Save(); err != nil {
				log.Printf("cart session save: %v", err)
			}
		}
		c.Next()
	}
}

func cartID(c *gin.Context) string {
	sid, _ := sessions.Default(c).Get(CartKey).(string)
	return sid
}

// bind decodes JSON or form bodies. Tag validation failures are not fatal
// here; the services report them field by field.
func bind(c *gin.Context, form any) bool {
	err := c.ShouldBind(form)
	var verrs validator.ValidationErrors
	if err == nil || errors.As(err, &verrs) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	return false
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

var notFound = []error{
	gorm.ErrRecordNotFound,
	catalog.ErrCategoryNotFound,
	catalog.ErrProductNotFound,
	cart.ErrProductNotFound,
	orders.ErrOrderNotFound,
	payments.ErrPaymentNotFound,
	payments.ErrMethodNotFound,
}

func respondError(c *gin.Context, err error) {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Fields})
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	if errors.Is(err, catalog.ErrCategoryInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
