package ws

import "kushklicker/internal/domain"

// client → server
type InboundMessage struct {
	Type string `json:"type"` // click | ping
}

// server → client
type OutboundMessage struct {
	Type       string                `json:"type"`
	Player     *domain.Player        `json:"player,omitempty"`
	KushGained int64                 `json:"kushGained,omitempty"`
	Completed  []*domain.Achievement `json:"completedAchievements,omitempty"`
	Message    string                `json:"message,omitempty"`
}
