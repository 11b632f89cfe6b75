package ws

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "ws_active_connections",
	Help: "Open live-feed WebSocket connections",
})

func init() {
	prometheus.MustRegister(activeConnections)
}

// Hub tracks the open clients per player so that several tabs of the same
// player see each other's clicks, and so shutdown can close them all.
// Exactly one client per player credits passive income.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	tickers map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		tickers: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.PlayerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.PlayerID] = set
	}
	set[c] = struct{}{}
	if _, ok := h.tickers[c.PlayerID]; !ok {
		h.tickers[c.PlayerID] = c
	}
	activeConnections.Inc()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.PlayerID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if h.tickers[c.PlayerID] == c {
		delete(h.tickers, c.PlayerID)
		for next := range set {
			h.tickers[c.PlayerID] = next
			break
		}
	}
	if len(set) == 0 {
		delete(h.clients, c.PlayerID)
	}
	activeConnections.Dec()
}

// isTicker reports whether c is the client crediting its player's income
func (h *Hub) isTicker(c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tickers[c.PlayerID] == c
}

// Broadcast sends msg to every other client of the same player
func (h *Hub) Broadcast(from *Client, msg OutboundMessage) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[from.PlayerID]))
	for c := range h.clients[from.PlayerID] {
		if c != from {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.push(msg)
	}
}

// Count returns the number of open clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Shutdown closes every open client
func (h *Hub) Shutdown() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.Close()
	}
}
