package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/invisiblewalls/internal/api"
	"github.com/mcoot/invisiblewalls/internal/api/response"
	"github.com/mcoot/invisiblewalls/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AuthService:       app.AuthService,
		SessionController: app.SessionController,
		ResultsService:    app.ResultsService,
		RoundsService:     app.RoundsService,
		BotService:        app.BotService,
	})

	return &testServer{handler: router}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// guest creates a guest player and returns its token
func (ts *testServer) guest(t *testing.T, name string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.SessionToken
}

// newSession creates a session and returns its ID
func (ts *testServer) newSession(t *testing.T, token string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", body, "")

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestPlayerInvalidName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "   "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_DISPLAY_NAME", errorCode(t, rr))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &registerResp)
	require.NoError(t, err)
	assert.False(t, registerResp.Player.IsGuest)

	// Registering the same username again conflicts
	rr = ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "USERNAME_EXISTS", errorCode(t, rr))

	// Login
	loginBody := map[string]string{
		"username": "alice",
		"password": "secret123",
	}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	err = json.Unmarshal(rr.Body.Bytes(), &loginResp)
	require.NoError(t, err)
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)

	// Wrong password
	loginBody["password"] = "wrong-password"
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rr))
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.Equal(t, "Bob", player.DisplayName)
}

func TestGetMeWithQueryToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Query")

	rr := ts.request(http.MethodGet, "/api/v1/players/me?token="+token, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions", nil, "invalid-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rr))
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Leaver")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Player")

	// Create
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "idle", created.Status)
	assert.Equal(t, "medium", created.Difficulty)

	// List
	rr = ts.request(http.MethodGet, "/api/v1/sessions", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var summaries []response.SessionSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, created.ID, summaries[0].ID)

	// Start a practice game on the second round
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+created.ID+"/start", map[string]any{"mode": "practice", "round": 1}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var started response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	assert.Equal(t, "playing", started.Status)
	assert.Equal(t, "practice", started.Mode)
	assert.Equal(t, 1, started.Round.Index)
	assert.Equal(t, 7, started.Round.GridSize)
	assert.Equal(t, 2, started.Round.KeysRequired)
	assert.Len(t, started.Round.Keys, 2)
	assert.Empty(t, started.Round.Hazards, "hazards are hidden during play")
	assert.Equal(t, 240, started.Round.TimeLeft)

	// Get
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"hazards"`)

	// Shuffle keeps play going
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+created.ID+"/shuffle", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var shuffled response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &shuffled))
	assert.Equal(t, "playing", shuffled.Status)

	// Back to the menu
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+created.ID+"/menu", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var menu response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &menu))
	assert.Equal(t, "idle", menu.Status)
	assert.Equal(t, "campaign", menu.Mode)
}

func TestStartDefaultsToCampaign(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Player")
	id := ts.newSession(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/start", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var started response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	assert.Equal(t, "campaign", started.Mode)
	assert.Equal(t, 3, started.RoundCount)
	assert.Equal(t, 0, started.Round.Index)
	assert.Equal(t, 5, started.Round.GridSize)
}

func TestStartRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Player")
	id := ts.newSession(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/start", map[string]any{"mode": "endless"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_MODE", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/start", map[string]any{"mode": "practice", "round": 99}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_ROUND", errorCode(t, rr))
}

func TestSessionNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Player")

	rr := ts.request(http.MethodGet, "/api/v1/sessions/NOSUCHSESSION", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, rr))
}

func TestSessionBelongsToOwner(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.guest(t, "Owner")
	intruder := ts.guest(t, "Intruder")
	id := ts.newSession(t, owner)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, intruder)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/move", map[string]int{"dx": 1, "dy": 0}, intruder)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The intruder's own list stays empty
	rr = ts.request(http.MethodGet, "/api/v1/sessions", nil, intruder)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestMove(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Mover")
	id := ts.newSession(t, token)

	// Moves before the game starts do nothing
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/move", map[string]int{"dx": 1, "dy": 0}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var ignored response.MoveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ignored))
	assert.Equal(t, "ignored", ignored.Outcome)
	assert.Equal(t, "idle", ignored.Session.Status)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/start", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	// Diagonal and long moves are rejected
	for _, body := range []map[string]int{{"dx": 1, "dy": 1}, {"dx": 2, "dy": 0}, {"dx": 0, "dy": 0}} {
		rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/move", body, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_MOVE", errorCode(t, rr))
	}

	// A single step always yields one of the in-play outcomes
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/move", map[string]int{"dx": 1, "dy": 0}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var moved response.MoveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &moved))
	assert.Contains(t, []string{"blocked", "moved", "key_collected", "bumped", "at_locked_door"}, moved.Outcome)
}

func TestMoveRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Mover")
	id := ts.newSession(t, token)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/move", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}

func TestChangeDifficulty(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Player")
	id := ts.newSession(t, token)

	rr := ts.request(http.MethodPatch, "/api/v1/sessions/"+id+"/difficulty", map[string]string{"difficulty": "hard"}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "hard", updated.Difficulty)

	rr = ts.request(http.MethodPatch, "/api/v1/sessions/"+id+"/difficulty", map[string]string{"difficulty": "nightmare"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_DIFFICULTY", errorCode(t, rr))
}

func TestListRounds(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rounds", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var table response.RoundTable
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &table))
	require.Len(t, table.Rounds, 3)
	assert.Equal(t, response.RoundConfig{Index: 0, Size: 5, KeysRequired: 1}, table.Rounds[0])
	assert.Equal(t, response.RoundConfig{Index: 1, Size: 7, KeysRequired: 2}, table.Rounds[1])
	assert.Equal(t, response.RoundConfig{Index: 2, Size: 10, KeysRequired: 1}, table.Rounds[2])
	assert.Equal(t, 2, table.PassThreshold)
}

func TestAutoplayClearsPracticeRound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Watcher")
	id := ts.newSession(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/start", map[string]any{"mode": "practice"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/autoplay", map[string]any{"strategy": "explorer", "max_moves": 5000}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AutoplayResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "explorer", resp.Strategy)
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, "won", resp.Actions[len(resp.Actions)-1].Outcome)
	assert.Contains(t, []string{"transition", "finished"}, resp.Session.Status)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id+"/result", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var result response.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, id, result.SessionID)
	assert.Equal(t, "practice", result.Mode)
	assert.Equal(t, 1, result.RoundCount)
}

func TestAutoplayRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Watcher")
	id := ts.newSession(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/autoplay", map[string]any{"strategy": "psychic"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "UNKNOWN_STRATEGY", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/autoplay", map[string]any{"max_moves": -1}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}

func TestResultBeforeFinishHasNoVerdict(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Player")
	id := ts.newSession(t, token)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/"+id+"/result", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"verdict"`)
}
