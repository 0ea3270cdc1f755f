package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/config"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/game"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/server"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	publicDir := filepath.Join(dir, "public")
	require.NoError(t, os.Mkdir(publicDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "game.js"), []byte("// client"), 0o644))
	indexFile := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(indexFile, []byte("<html><body>arena</body></html>"), 0o644))

	cfg, err := config.FromEnv(func(key string) string {
		switch key {
		case "PUBLIC_DIR":
			return publicDir
		case "INDEX_FILE":
			return indexFile
		}
		return ""
	})
	require.NoError(t, err)

	// Keep collectibles far from the spawn point so moves never score
	cfg.Game.FieldWidth = 50
	cfg.Game.FieldHeight = 50

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := 0
	world := game.NewWorld(cfg.Game, logger,
		game.WithRand(rand.New(rand.NewPCG(1, 2))),
		game.WithIDGenerator(func() string {
			next++
			return fmt.Sprintf("p%d", next)
		}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	go world.Run(ctx)

	ts := httptest.NewServer(server.NewServer(world, cfg, logger).Routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, msgType)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func readState(t *testing.T, conn *websocket.Conn, wantType string) game.State {
	t.Helper()
	env := readEnvelope(t, conn)
	require.Equal(t, wantType, env.Type)

	var st game.State
	require.NoError(t, json.Unmarshal(env.Data, &st))
	return st
}

func sendMove(t *testing.T, conn *websocket.Conn, dir string, speed float64) {
	t.Helper()
	frame := fmt.Sprintf(`{"type":"move","data":{"dir":%q,"speed":%v}}`, dir, speed)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestWebSocket_InitOnConnect(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "")

	st := readState(t, conn, game.MsgTypeInit)
	require.Contains(t, st.Players, "p1")
	assert.Equal(t, game.Player{ID: "p1", X: game.SpawnX, Y: game.SpawnY}, st.Players["p1"])
	assert.Len(t, st.Collectibles, game.ItemBatchSize)
}

func TestWebSocket_MoveBroadcastsState(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "")
	readState(t, conn, game.MsgTypeInit)

	sendMove(t, conn, "right", 5)

	st := readState(t, conn, game.MsgTypeStateUpdate)
	assert.Equal(t, 255.0, st.Players["p1"].X)
	assert.Equal(t, 250.0, st.Players["p1"].Y)
}

func TestWebSocket_MalformedFrameIgnored(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "")
	readState(t, conn, game.MsgTypeInit)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	sendMove(t, conn, "sideways", 5)
	sendMove(t, conn, "up", 5)

	st := readState(t, conn, game.MsgTypeStateUpdate)
	assert.Equal(t, 245.0, st.Players["p1"].Y)
}

func TestWebSocket_JoinAndLeaveNotifications(t *testing.T) {
	ts := newTestServer(t)
	first := dial(t, ts, "")
	readState(t, first, game.MsgTypeInit)

	second := dial(t, ts, "")
	initState := readState(t, second, game.MsgTypeInit)
	assert.Len(t, initState.Players, 2)

	joined := readEnvelope(t, first)
	require.Equal(t, game.MsgTypePlayerConnected, joined.Type)
	var player game.Player
	require.NoError(t, json.Unmarshal(joined.Data, &player))
	assert.Equal(t, "p2", player.ID)

	require.NoError(t, second.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	left := readEnvelope(t, first)
	require.Equal(t, game.MsgTypePlayerDisconnected, left.Type)
	var id string
	require.NoError(t, json.Unmarshal(left.Data, &id))
	assert.Equal(t, "p2", id)
}

func TestWebSocket_MsgPackEncoding(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "?encoding=msgpack")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)

	var env struct {
		Type string             `msgpack:"type"`
		Data msgpack.RawMessage `msgpack:"data"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &env))
	assert.Equal(t, game.MsgTypeInit, env.Type)

	move, err := msgpack.Marshal(map[string]any{
		"type": "move",
		"data": map[string]any{"dir": "down", "speed": 5.0},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, move))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, msgpack.Unmarshal(data, &env))
	assert.Equal(t, game.MsgTypeStateUpdate, env.Type)
}

func TestWebSocket_UnknownEncodingRejected(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?encoding=xml"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_SecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "arena")

	assert.Equal(t, "PHP 7.4.3", resp.Header.Get("X-Powered-By"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "1; mode=block", resp.Header.Get("X-XSS-Protection"))
	assert.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
	assert.Equal(t, "no-store", resp.Header.Get("Surrogate-Control"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHTTP_PublicAssets(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/public/game.js")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestHTTP_NotFound(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/missing"},
		{method: http.MethodPost, path: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var body struct {
				Error   string            `json:"error"`
				Headers map[string]string `json:"headers"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Not Found", body.Error)
			assert.Equal(t, "PHP 7.4.3", body.Headers["X-Powered-By"])
		})
	}
}

func TestHTTP_HealthAndLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "")
	readState(t, conn, game.MsgTypeInit)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 1, health["players"])

	resp, err = http.Get(ts.URL + "/api/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	var board []game.Standing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	require.Len(t, board, 1)
	assert.Equal(t, "p1", board[0].ID)
	assert.Equal(t, 1, board[0].Rank)
}
