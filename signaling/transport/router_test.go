package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamcam/backend/internal/jwt"
	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/signaling/queue"
)

var testAuth = jwt.NewAuth("test-secret")

func setupRouter(t *testing.T) (*gin.Engine, *queue.Relay, *clockwork.FakeClock) {
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	relay := queue.NewRelay(clock, log.NewTest(t))
	router := NewRouter(relay, nil, log.NewTest(t))

	engine := gin.New()
	group := engine.Group("/api", jwt.Middleware(testAuth))
	router.Register(group)
	return engine, relay, clock
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := testAuth.Sign(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func poll(t *testing.T, engine *gin.Engine, roomID, userID string, lastSeen int64) ([]any, int64) {
	path := fmt.Sprintf("/api/signaling/room/%s/signals?lastSeen=%d", roomID, lastSeen)
	w := doRequest(t, engine, "GET", path, userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	signals := response["signals"].([]any)
	cursor := int64(response["lastSeen"].(float64))
	return signals, cursor
}

func TestSendAndPoll(t *testing.T) {
	engine, _, clock := setupRouter(t)

	w := doRequest(t, engine, "POST", "/api/signaling/send", "alice", map[string]any{
		"roomId":  "r1",
		"to":      "bob",
		"payload": map[string]any{"sdp": "offer"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	signals, cursor := poll(t, engine, "r1", "bob", 0)
	require.Len(t, signals, 1)

	signal := signals[0].(map[string]any)
	assert.Equal(t, "alice", signal["from"])
	assert.Equal(t, map[string]any{"sdp": "offer"}, signal["payload"])
	assert.Equal(t, clock.Now().UnixMilli(), int64(signal["timestamp"].(float64)))

	// re-poll with the returned cursor delivers nothing new
	signals, next := poll(t, engine, "r1", "bob", cursor)
	assert.Empty(t, signals)
	assert.Equal(t, cursor, next)
}

func TestSendToAll(t *testing.T) {
	engine, _, _ := setupRouter(t)

	poll(t, engine, "r1", "bob", 0)
	poll(t, engine, "r1", "carol", 0)

	w := doRequest(t, engine, "POST", "/api/signaling/send", "alice", map[string]any{
		"roomId":  "r1",
		"to":      "all",
		"payload": map[string]any{"sdp": "offer"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	signals, _ := poll(t, engine, "r1", "bob", 0)
	assert.Len(t, signals, 1)
	signals, _ = poll(t, engine, "r1", "carol", 0)
	assert.Len(t, signals, 1)
	signals, _ = poll(t, engine, "r1", "alice", 0)
	assert.Empty(t, signals)
}

func TestSendValidation(t *testing.T) {
	engine, _, _ := setupRouter(t)

	for name, body := range map[string]map[string]any{
		"MissingRoomID":  {"to": "bob", "payload": map[string]any{"a": 1}},
		"MissingTo":      {"roomId": "r1", "payload": map[string]any{"a": 1}},
		"MissingPayload": {"roomId": "r1", "to": "bob"},
		"BadRoomID":      {"roomId": "no spaces", "to": "bob", "payload": map[string]any{"a": 1}},
	} {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, engine, "POST", "/api/signaling/send", "alice", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestPollRegistersPresence(t *testing.T) {
	engine, _, _ := setupRouter(t)

	signals, cursor := poll(t, engine, "r2", "xavier", 0)
	assert.Empty(t, signals)
	assert.Equal(t, int64(0), cursor)

	w := doRequest(t, engine, "GET", "/api/signaling/room/r2/users", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"xavier"}, decode(t, w)["userIds"])
}

func TestClearSignals(t *testing.T) {
	engine, _, _ := setupRouter(t)

	poll(t, engine, "r1", "bob", 0)

	w := doRequest(t, engine, "DELETE", "/api/signaling/room/r1/signals", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, engine, "GET", "/api/signaling/room/r1/users", "alice", nil)
	assert.Equal(t, []any{}, decode(t, w)["userIds"])
}

func TestListUsersUnknownRoom(t *testing.T) {
	engine, _, _ := setupRouter(t)

	w := doRequest(t, engine, "GET", "/api/signaling/room/nope/users", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["userIds"])
}

func TestRequestOfferExcludesRequester(t *testing.T) {
	engine, _, _ := setupRouter(t)

	poll(t, engine, "r1", "alice", 0)
	poll(t, engine, "r1", "owner", 0)

	w := doRequest(t, engine, "POST", "/api/signaling/request-offer", "alice", map[string]any{
		"roomId": "r1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	signals, _ := poll(t, engine, "r1", "owner", 0)
	require.Len(t, signals, 1)
	signal := signals[0].(map[string]any)
	assert.Equal(t, "alice", signal["from"])
	assert.Equal(t, map[string]any{"type": "request-offer"}, signal["payload"])

	signals, _ = poll(t, engine, "r1", "alice", 0)
	assert.Empty(t, signals)
}

func TestPlaySyncIncludesSender(t *testing.T) {
	engine, _, _ := setupRouter(t)

	poll(t, engine, "r1", "alice", 0)
	poll(t, engine, "r1", "bob", 0)

	w := doRequest(t, engine, "POST", "/api/signaling/play-sync", "alice", map[string]any{
		"roomId": "r1",
		"url":    "https://youtu.be/xyz",
	})
	require.Equal(t, http.StatusOK, w.Code)

	for _, user := range []string{"alice", "bob"} {
		signals, _ := poll(t, engine, "r1", user, 0)
		require.Len(t, signals, 1, "user %s", user)
		signal := signals[0].(map[string]any)
		assert.Equal(t, map[string]any{
			"type": "play-sync",
			"url":  "https://youtu.be/xyz",
		}, signal["payload"])
	}
}

func TestPlaySyncValidation(t *testing.T) {
	engine, _, _ := setupRouter(t)

	w := doRequest(t, engine, "POST", "/api/signaling/play-sync", "alice", map[string]any{
		"roomId": "r1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthenticated(t *testing.T) {
	engine, _, _ := setupRouter(t)

	w := doRequest(t, engine, "POST", "/api/signaling/send", "", map[string]any{
		"roomId":  "r1",
		"to":      "bob",
		"payload": map[string]any{"a": 1},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpiredSignalsAbsentAfterEviction(t *testing.T) {
	engine, relay, clock := setupRouter(t)

	doRequest(t, engine, "POST", "/api/signaling/send", "alice", map[string]any{
		"roomId":  "r1",
		"to":      "bob",
		"payload": map[string]any{"sdp": "stale"},
	})

	clock.Advance(31 * time.Second)
	relay.EvictExpired(clock.Now().Add(-30 * time.Second))

	signals, _ := poll(t, engine, "r1", "bob", 0)
	assert.Empty(t, signals)
}
