// hub_test.go - Tests for per-user WebSocket delivery

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-jobmarket-backend/events"
	"go-jobmarket-backend/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startHub serves the hub on a test server; the user id comes from ?user=.
func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.URL.Query().Get("user"))
		_ = hub.Serve(w, r, uint(id))
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, user int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user="+strconv.Itoa(user), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubDeliversToRecipientOnly(t *testing.T) {
	hub, url := startHub(t)
	applicant := dial(t, url, 9)
	other := dial(t, url, 3)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), events.ApplicationStatusUpdated(&models.Application{ID: 4, UserID: 9, Status: models.ApplicationSelected}))

	_ = applicant.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := applicant.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string `json:"type"`
		Data struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, events.TypeApplicationStatusUpdated, got.Type)
	assert.EqualValues(t, 4, got.Data.ID)
	assert.Equal(t, "SELECTED", got.Data.Status)

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err) // nothing addressed to user 3
}

func TestHubBroadcastsUnaddressedEvents(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url, 1)
	b := dial(t, url, 2)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), events.JobCreated(&models.Job{ID: 11, Title: "T"}))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), `"type":"job.created"`)
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, 1)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_ = conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRefusesClientsAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 5)
	}))
	defer srv.Close()

	cancel()
	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"), 5)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, hub.ClientCount())
}
