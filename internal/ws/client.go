package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"
	"kushklicker/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 512
)

// Engine is the part of the game engine a live session drives
type Engine interface {
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	RecordClick(ctx context.Context, playerID string) (*game.ClickResult, error)
	TickPassiveIncome(ctx context.Context, playerID string, elapsedSeconds int64) (*game.TickResult, error)
}

// Client is one WebSocket connection following one player
type Client struct {
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte

	engine       Engine
	hub          *Hub
	tickInterval time.Duration
	now          func() time.Time
	log          *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	Done   chan struct{}
	once   sync.Once
}

func NewClient(playerID string, conn *websocket.Conn, engine Engine, hub *Hub, tickInterval time.Duration) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		PlayerID:     playerID,
		Conn:         conn,
		Send:         make(chan []byte, 64),
		engine:       engine,
		hub:          hub,
		tickInterval: tickInterval,
		now:          time.Now,
		log:          logger.With("component", "ws", "player_id", playerID),
		ctx:          ctx,
		cancel:       cancel,
		Done:         make(chan struct{}),
	}
}

// Run serves the connection until the client goes away or the hub shuts down
func (c *Client) Run() {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	go c.writePump()
	go c.tickLoop()

	if p, err := c.engine.GetPlayer(c.ctx, c.PlayerID); err == nil {
		c.push(OutboundMessage{Type: MsgState, Player: p})
	} else {
		c.push(OutboundMessage{Type: MsgError, Message: "Player not found"})
	}

	c.readPump()
}

// Close stops every pump of the client
func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
		close(c.Done)
		_ = c.Conn.Close()
	})
}

// push queues a message, dropping it if the client cannot keep up
func (c *Client) push(msg OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("ws marshal failed", "error", err)
		return
	}
	select {
	case c.Send <- data:
	case <-c.Done:
	default:
		c.log.Warn("ws send buffer full, dropping message", "type", msg.Type)
	}
}

//read
func (c *Client) readPump() {
	defer c.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", "error", err)
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var in InboundMessage
	if err := json.Unmarshal(data, &in); err != nil {
		c.push(OutboundMessage{Type: MsgError, Message: "invalid message"})
		return
	}

	switch in.Type {
	case MsgClick:
		res, err := c.engine.RecordClick(c.ctx, c.PlayerID)
		if err != nil {
			c.log.Warn("ws click failed", "error", err)
			c.push(OutboundMessage{Type: MsgError, Message: "click failed"})
			return
		}
		msg := OutboundMessage{Type: MsgClick, Player: res.Player, KushGained: res.KushGained, Completed: res.Completed}
		c.push(msg)
		c.hub.Broadcast(c, OutboundMessage{Type: MsgState, Player: res.Player})
	case MsgPing:
		c.push(OutboundMessage{Type: MsgPong})
	default:
		c.push(OutboundMessage{Type: MsgError, Message: "unknown message type"})
	}
}

// tickLoop credits passive income while the connection is the player's
// ticker and pushes the new state to every tab. Elapsed
// wall-clock time is accumulated until it is worth at least one KUSH, so
// slow producers are not rounded down to zero on every tick.
func (c *Client) tickLoop() {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	var pending time.Duration
	last := c.now()
	for {
		select {
		case <-c.Done:
			return
		case <-ticker.C:
		}

		now := c.now()
		if !c.hub.isTicker(c) {
			pending = 0
			last = now
			continue
		}
		pending += now.Sub(last)
		last = now

		pending = c.creditIncome(pending)
	}
}

// creditIncome turns whole seconds of pending time into passive income and
// returns what is left. Time is only consumed when KUSH was actually credited.
func (c *Client) creditIncome(pending time.Duration) time.Duration {
	p, err := c.engine.GetPlayer(c.ctx, c.PlayerID)
	if err != nil {
		c.log.Warn("ws tick lookup failed", "error", err)
		return pending
	}
	if p.AutoIncomePerHour <= 0 {
		return 0
	}

	secs := int64(pending / time.Second)
	if game.PassiveIncome(p.AutoIncomePerHour, secs) < 1 {
		return pending
	}
	res, err := c.engine.TickPassiveIncome(c.ctx, c.PlayerID, secs)
	if err != nil {
		c.log.Warn("ws tick failed", "error", err)
		return pending
	}
	// the rate may have changed between the lookup and the tick
	if res.KushGained <= 0 {
		return pending
	}
	msg := OutboundMessage{Type: MsgState, Player: res.Player, KushGained: res.KushGained, Completed: res.Completed}
	c.push(msg)
	c.hub.Broadcast(c, msg)
	return pending - time.Duration(secs)*time.Second
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.Done:
			_ = c.Conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("ws write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
