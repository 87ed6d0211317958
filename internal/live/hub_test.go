package live_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/live"
)

func TestHubBroadcasts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := live.NewHub()

	r := gin.New()
	r.GET("/ws", hub.Handler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	err = hub.Notify(context.Background(), events.Event{
		Name:       events.OrderStatusChanged,
		ObjectType: "order",
		ObjectID:   "7",
		Metadata:   map[string]any{"to": "PAID"},
	})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got events.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, events.OrderStatusChanged, got.Name)
	assert.Equal(t, "7", got.ObjectID)
	assert.Equal(t, "PAID", got.Meta("to"))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubRejectsForeignOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := live.NewHub("https://shop.example.com", "*")

	r := gin.New()
	r.GET("/ws", hub.Handler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	dial := func(origin string) (*websocket.Conn, *http.Response, error) {
		header := http.Header{}
		if origin != "" {
			header.Set("Origin", origin)
		}
		return websocket.DefaultDialer.Dial(url, header)
	}

	conn, resp, err := dial("https://evil.example.net")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, conn)

	for _, origin := range []string{"https://shop.example.com", srv.URL, ""} {
		conn, _, err := dial(origin)
		require.NoError(t, err, origin)
		conn.Close()
	}
}
