package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/db"
	"github.com/Keoroanthony/go-storefront/internal/testutil"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB := testutil.OpenDB(t)
	originalDB := db.DB
	db.SetTestDB(testDB)
	t.Cleanup(func() { db.SetTestDB(originalDB) })

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(auth.SessionName, cookie.NewStore([]byte("test-secret-key"))))

	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.PasswordLogin)
	r.POST("/auth/logout", auth.Logout)
	r.GET("/auth/login", auth.Login)

	private := r.Group("/me", auth.RequireAuth())
	private.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, auth.CurrentCustomer(c)) })
	private.GET("/staff", auth.RequireStaff(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return r, testDB
}

func do(r *gin.Engine, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPasswordFlow(t *testing.T) {
	r, testDB := setupAuthRouter(t)

	w := do(r, http.MethodPost, "/auth/register", gin.H{"name": "Meera", "email": "Meera@Example.com", "password": "short"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/auth/register", gin.H{"name": "Meera", "email": "Meera@Example.com", "password": "longenough"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = do(r, http.MethodPost, "/auth/register", gin.H{"name": "Meera", "email": "meera@example.com", "password": "longenough"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/auth/login", gin.H{"email": "meera@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/auth/login", gin.H{"email": "meera@example.com", "password": "longenough"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get("Set-Cookie")

	w = do(r, http.MethodGet, "/me", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meera@example.com")

	w = do(r, http.MethodGet, "/me/staff", nil, session)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, testDB.Exec("UPDATE customers SET is_staff = ?", true).Error)
	w = do(r, http.MethodGet, "/me/staff", nil, session)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodPost, "/auth/logout", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/me", nil, w.Header().Get("Set-Cookie"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	r, _ := setupAuthRouter(t)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/auth/login", nil, "").Code)
}

func TestUpsertOIDCCustomer(t *testing.T) {
	_, testDB := setupAuthRouter(t)
	ctx := context.Background()
	existing := testutil.CreateCustomer(t, testDB, "linked@example.com", false)

	linked, err := auth.UpsertOIDCCustomer(ctx, testDB, auth.Claims{Sub: "sub-1", Email: "Linked@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)

	again, err := auth.UpsertOIDCCustomer(ctx, testDB, auth.Claims{Sub: "sub-1", Email: "changed@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, again.ID)

	fresh, err := auth.UpsertOIDCCustomer(ctx, testDB, auth.Claims{Sub: "sub-2", Name: "New", Email: "new@example.com", Phone: "+911"})
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, fresh.ID)
	require.NotNil(t, fresh.OIDCID)
	assert.Equal(t, "sub-2", *fresh.OIDCID)
}
