package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	config "github.com/Keoroanthony/go-storefront/configs"
	"github.com/Keoroanthony/go-storefront/internal/db"
	"github.com/Keoroanthony/go-storefront/internal/models"
)

var (
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
)

const (
	SessionName  = "gosess"
	CustomerKey  = "customer_id"
	contextKey   = "customer"
	oidcStateKey = "oidc_state"
)

// Init sets up OIDC login. Without an issuer only password login is
// available.
func Init(cfg config.OIDCConfig) {
	if cfg.Issuer == "" {
		log.Println("OIDC_ISSUER not set, OIDC login disabled")
		return
	}

	ctx := context.Background()

	var err error
	provider, err = oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		log.Fatalf("OIDC provider init error: %v", err)
	}

	verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
	}
}

func oidcEnabled() bool {
	return oauth2Config != nil && verifier != nil
}

// GET /auth/login
func Login(c *gin.Context) {
	if !oidcEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "oidc login is not configured"})
		return
	}

	state := uuid.NewString()
	sess := sessions.Default(c)
	sess.Set(oidcStateKey, state)
	_ = sess.Save()

	c.Redirect(http.StatusFound, oauth2Config.AuthCodeURL(state))
}

// GET /auth/callback
func Callback(c *gin.Context) {
	if !oidcEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "oidc login is not configured"})
		return
	}

	sess := sessions.Default(c)
	want, _ := sess.Get(oidcStateKey).(string)
	sess.Delete(oidcStateKey)
	if want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}

	cust, err := UpsertOIDCCustomer(ctx, db.DB, claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save customer"})
		return
	}

	sess.Set(CustomerKey, cust.ID)
	_ = sess.Save()

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "customer": cust})
}

type Claims struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone_number"`
}

// UpsertOIDCCustomer finds the customer for an OIDC subject. A first login
// links an existing account with the same email, or creates one.
func UpsertOIDCCustomer(ctx context.Context, conn *gorm.DB, claims Claims) (models.Customer, error) {
	var cust models.Customer
	conn = conn.WithContext(ctx)

	err := conn.Where("oidc_id = ?", claims.Sub).First(&cust).Error
	if err == nil {
		return cust, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return cust, err
	}

	sub := claims.Sub
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	err = conn.Where("email = ?", email).First(&cust).Error
	switch {
	case err == nil:
		return cust, conn.Model(&cust).Update("oidc_id", sub).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return cust, err
	}

	cust = models.Customer{
		OIDCID: &sub,
		Name:   claims.Name,
		Email:  email,
		Phone:  claims.Phone,
	}
	return cust, conn.Create(&cust).Error
}

// POST /auth/logout
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// SessionCustomer returns the logged-in customer, if any, without aborting.
func SessionCustomer(c *gin.Context) (*models.Customer, bool) {
	if cust, ok := c.Get(contextKey); ok {
		return cust.(*models.Customer), true
	}

	custID, ok := sessions.Default(c).Get(CustomerKey).(uint)
	if !ok || custID == 0 {
		return nil, false
	}

	var cust models.Customer
	if err := db.DB.First(&cust, custID).Error; err != nil {
		return nil, false
	}
	c.Set(contextKey, &cust)
	return &cust, true
}

// CurrentCustomer returns the customer RequireAuth stored on the context.
func CurrentCustomer(c *gin.Context) *models.Customer {
	cust, _ := SessionCustomer(c)
	return cust
}

// Middleware: ensures user is logged in and injects *models.Customer into context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		custID, ok := sess.Get(CustomerKey).(uint)
		if !ok || custID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var cust models.Customer
		if err := db.DB.First(&cust, custID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(contextKey, &cust)
		c.Next()
	}
}

// RequireStaff must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		cust := CurrentCustomer(c)
		if cust == nil || !cust.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}
