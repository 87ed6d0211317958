package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/db"
	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func logIn(c *gin.Context, cust models.Customer) {
	sess := sessions.Default(c)
	sess.Set(CustomerKey, cust.ID)
	_ = sess.Save()
}

// POST /auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verr := utils.Validate(req); verr.OrNil() != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	if err := db.DB.Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	cust := models.Customer{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
	}
	if err := db.DB.Create(&cust).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logIn(c, cust)
	c.JSON(http.StatusCreated, gin.H{"message": "registered", "customer": cust})
}

// POST /auth/login
func PasswordLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var cust models.Customer
	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&cust).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err != nil || cust.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(cust.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	logIn(c, cust)
	c.JSON(http.StatusOK, gin.H{"message": "logged in", "customer": cust})
}
