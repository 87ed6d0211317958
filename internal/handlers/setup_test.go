package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/cart"
	"github.com/Keoroanthony/go-storefront/internal/catalog"
	"github.com/Keoroanthony/go-storefront/internal/checkout"
	"github.com/Keoroanthony/go-storefront/internal/db"
	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/handlers"
	"github.com/Keoroanthony/go-storefront/internal/live"
	"github.com/Keoroanthony/go-storefront/internal/media"
	"github.com/Keoroanthony/go-storefront/internal/notifier"
	"github.com/Keoroanthony/go-storefront/internal/orders"
	"github.com/Keoroanthony/go-storefront/internal/payments"
	"github.com/Keoroanthony/go-storefront/internal/routes"
	"github.com/Keoroanthony/go-storefront/internal/testutil"
)

const testSecret = "test-secret-key"

type fakeMailer struct {
	mu   sync.Mutex
	sent []notifier.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email notifier.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type storefront struct {
	router   *gin.Engine
	db       *gorm.DB
	captured *events.CaptureHook
	mailer   *fakeMailer
	media    string
}

func setupStorefront(t *testing.T) storefront {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB := testutil.OpenDB(t)
	originalDB := db.DB
	db.SetTestDB(testDB)
	t.Cleanup(func() { db.SetTestDB(originalDB) })

	bus := events.NewEmitter()
	captured := &events.CaptureHook{}
	bus.Subscribe("", captured)
	orderSvc := orders.NewService(testDB, bus)
	bus.Subscribe(events.PaymentStatusChanged, orderSvc.PaymentStatusHook())

	shipping, err := checkout.NewShippingRule("0")
	require.NoError(t, err)

	carts := cart.NewService(testDB, cart.NewMemoryStore())
	mailer := &fakeMailer{}
	mediaRoot := t.TempDir()
	h := &handlers.Handler{
		Catalog:   catalog.NewService(testDB),
		Cart:      carts,
		Checkout:  checkout.NewService(testDB, carts, shipping, bus),
		Orders:    orderSvc,
		Payments:  payments.NewService(testDB, bus, "Test Shop"),
		Media:     media.NewStore(mediaRoot, "/media"),
		Mailer:    mailer,
		ContactTo: "support@example.com",
		Live:      live.NewHub(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(testSecret))))
	routes.SetupRoutes(r, h)

	return storefront{router: r, db: testDB, captured: captured, mailer: mailer, media: mediaRoot}
}

// sessionCookie forges the session cookie a browser would carry.
func sessionCookie(customerID *uint, cartSID string) string {
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(testSecret)))(tempC)

	session := sessions.Default(tempC)
	if customerID != nil {
		session.Set(auth.CustomerKey, *customerID)
	}
	if cartSID != "" {
		session.Set(handlers.CartKey, cartSID)
	}
	_ = session.Save()
	return tempW.Header().Get("Set-Cookie")
}

func (s storefront) perform(method, path string, body io.Reader, contentType, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func (s storefront) json(method, path string, body any, cookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	return s.perform(method, path, &buf, "application/json", cookie)
}

func (s storefront) form(path string, values url.Values, cookie string) *httptest.ResponseRecorder {
	return s.perform(http.MethodPost, path, bytes.NewBufferString(values.Encode()), "application/x-www-form-urlencoded", cookie)
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), v), recorder.Body.String())
}

var errMailDown = errors.New("ses unavailable")
