package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"
	"kushklicker/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, tick time.Duration) (*game.Engine, *Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := game.NewEngine(repository.NewMemoryStore(), game.Options{})
	require.NoError(t, engine.SeedCatalog(context.Background()))
	hub := NewHub()

	r := gin.New()
	r.GET("/ws/players/:id", HandleWS(engine, hub, HandlerOptions{TickInterval: tick}))
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})
	return engine, hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(OutboundMessage) bool) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg OutboundMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestStateOnConnect(t *testing.T) {
	engine, _, base := newTestServer(t, time.Second)
	p, err := engine.CreatePlayer(context.Background(), game.NewPlayerInput{Username: "live"})
	require.NoError(t, err)

	conn := dial(t, base+"/ws/players/"+p.ID)
	msg := readUntil(t, conn, func(m OutboundMessage) bool { return m.Type == MsgState })
	require.NotNil(t, msg.Player)
	assert.Equal(t, p.ID, msg.Player.ID)
}

func TestClickOverWebSocket(t *testing.T) {
	engine, hub, base := newTestServer(t, time.Second)
	p, err := engine.CreatePlayer(context.Background(), game.NewPlayerInput{Username: "clicker"})
	require.NoError(t, err)

	conn := dial(t, base+"/ws/players/"+p.ID)
	other := dial(t, base+"/ws/players/"+p.ID)
	readUntil(t, conn, func(m OutboundMessage) bool { return m.Type == MsgState })
	readUntil(t, other, func(m OutboundMessage) bool { return m.Type == MsgState })
	assert.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(InboundMessage{Type: MsgClick}))
	msg := readUntil(t, conn, func(m OutboundMessage) bool { return m.Type == MsgClick })
	assert.Equal(t, int64(1), msg.KushGained)
	assert.Equal(t, int64(1), msg.Player.TotalKush)

	mirrored := readUntil(t, other, func(m OutboundMessage) bool { return m.Type == MsgState && m.Player.TotalKush == 1 })
	assert.Equal(t, int64(1), mirrored.Player.TotalClicks)

	require.NoError(t, conn.WriteJSON(InboundMessage{Type: MsgPing}))
	readUntil(t, conn, func(m OutboundMessage) bool { return m.Type == MsgPong })
}

func TestPassiveIncomeIsStreamed(t *testing.T) {
	engine, _, base := newTestServer(t, 50*time.Millisecond)
	ctx := context.Background()
	p, err := engine.CreatePlayer(ctx, game.NewPlayerInput{Username: "farmer"})
	require.NoError(t, err)
	rate := int64(36000)
	_, err = engine.UpdatePlayer(ctx, p.ID, domain.PlayerPatch{AutoIncomePerHour: &rate})
	require.NoError(t, err)

	conn := dial(t, base+"/ws/players/"+p.ID)
	msg := readUntil(t, conn, func(m OutboundMessage) bool { return m.Type == MsgState && m.KushGained > 0 })
	assert.GreaterOrEqual(t, msg.KushGained, int64(10))
	assert.Equal(t, msg.KushGained, msg.Player.TotalKush)
}

func TestUnknownPlayerIsRejected(t *testing.T) {
	_, _, base := newTestServer(t, time.Second)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/ws/players/nobody", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownMessageType(t *testing.T) {
	engine, _, base := newTestServer(t, time.Second)
	p, err := engine.CreatePlayer(context.Background(), game.NewPlayerInput{Username: "odd"})
	require.NoError(t, err)

	conn := dial(t, base+"/ws/players/"+p.ID)
	require.NoError(t, conn.WriteJSON(InboundMessage{Type: "dance"}))
	msg := readUntil(t, conn, func(m OutboundMessage) bool { return m.Type == MsgError })
	assert.Equal(t, "unknown message type", msg.Message)
}

// staleRateEngine reports a producing player but credits nothing, as when the
// rate drops between the lookup and the locked tick.
type staleRateEngine struct {
	gained int64
	ticks  int
}

func (e *staleRateEngine) GetPlayer(_ context.Context, id string) (*domain.Player, error) {
	return &domain.Player{ID: id, AutoIncomePerHour: 3600}, nil
}

func (e *staleRateEngine) RecordClick(context.Context, string) (*game.ClickResult, error) {
	return nil, domain.ErrNotFound
}

func (e *staleRateEngine) TickPassiveIncome(_ context.Context, playerID string, _ int64) (*game.TickResult, error) {
	e.ticks++
	return &game.TickResult{Player: &domain.Player{ID: playerID}, KushGained: e.gained}, nil
}

func TestCreditIncomeKeepsTimeWhenNothingIsCredited(t *testing.T) {
	engine := &staleRateEngine{}
	c := NewClient("p1", nil, engine, NewHub(), time.Second)

	pending := c.creditIncome(2500 * time.Millisecond)
	assert.Equal(t, 1, engine.ticks)
	assert.Equal(t, 2500*time.Millisecond, pending)
	assert.Empty(t, c.Send)

	engine.gained = 2
	pending = c.creditIncome(pending)
	assert.Equal(t, 2, engine.ticks)
	assert.Equal(t, 500*time.Millisecond, pending)
	require.Len(t, c.Send, 1)
}
