// system_test.go - Tests for liveness, health and the WebSocket endpoint

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-jobmarket-backend/auth"
	"go-jobmarket-backend/events"
	"go-jobmarket-backend/models"
	"go-jobmarket-backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootAndHealth(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is running 🚀", w.Body.String())

	w = env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	// a closed pool fails the ping
	sqlDB, err := env.store.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	w = env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestWebSocketRouteNeedsHub(t *testing.T) {
	env := setupRouter(t) // built without a hub
	w := env.do(http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestWebSocketReceivesOwnEvents applies over HTTP and checks that only the
// job owner's socket gets the notification
func TestWebSocketReceivesOwnEvents(t *testing.T) {
	st := openTestStore(t)
	tokens := auth.NewTokens(testSecret)
	hub := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	Register(r, New(st, tokens, nil, hub, hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	newUser := func(name string, role models.Role) (*models.User, string) {
		u := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
		require.NoError(t, st.CreateUser(context.Background(), u))
		tok, err := tokens.Issue(u)
		require.NoError(t, err)
		return u, tok
	}
	owner, ownerToken := newUser("owner", models.RoleOwner)
	_, otherToken := newUser("other", models.RoleOwner)
	_, workerToken := newUser("worker", models.RoleWorker)
	job := &models.Job{Title: "Tile", Description: "Bathroom", Skill: "tiling", Budget: 300, OwnerID: owner.ID}
	require.NoError(t, st.CreateJob(context.Background(), job))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	dial := func(token string) (*websocket.Conn, *http.Response, error) {
		h := http.Header{}
		if token != "" {
			h.Set("Authorization", "Bearer "+token)
		}
		return websocket.DefaultDialer.Dial(wsURL, h)
	}

	// --- Unauthenticated upgrade is refused ---
	_, resp, err := dial("")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ownerConn, _, err := dial(ownerToken)
	require.NoError(t, err)
	defer ownerConn.Close()
	otherConn, _, err := dial(otherToken)
	require.NoError(t, err)
	defer otherConn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	// --- Worker applies ---
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/jobs/%d/apply", srv.URL, job.ID),
		strings.NewReader(`{"portfolioLink":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+workerToken)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	// --- Owner receives it ---
	require.NoError(t, ownerConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := ownerConn.ReadMessage()
	require.NoError(t, err)
	var evt struct {
		Type string             `json:"type"`
		Data models.Application `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &evt))
	assert.Equal(t, events.TypeApplicationCreated, evt.Type)
	assert.Equal(t, job.ID, evt.Data.JobID)
	assert.Equal(t, "https://example.com", evt.Data.PortfolioLink)

	// --- The other owner does not ---
	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = otherConn.ReadMessage()
	assert.Error(t, err)
}
