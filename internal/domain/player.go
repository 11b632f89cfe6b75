package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxUsernameLength = 64

	// Prefixes of synthetic usernames written by the bots when linking accounts.
	TelegramLinkPrefix = "telegram_"
	DiscordLinkPrefix  = "discord_"
)

type Player struct {
	ID                 string    `db:"id" json:"id"`
	Username           string    `db:"username" json:"username"`
	TotalKush          int64     `db:"total_kush" json:"totalKush"`
	TotalClicks        int64     `db:"total_clicks" json:"totalClicks"`
	PerClickMultiplier int64     `db:"per_click_multiplier" json:"perClickMultiplier"`
	AutoIncomePerHour  int64     `db:"auto_income_per_hour" json:"autoIncomePerHour"`
	ClaimableTokens    int64     `db:"claimable_tokens" json:"claimableTokens"`
	WalletAddress      *string   `db:"wallet_address" json:"walletAddress"`
	ReferredBy         *string   `db:"referred_by" json:"referredBy"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	LastActive         time.Time `db:"last_active" json:"lastActive"`
}

// NewPlayer returns a fresh player with the starting economy.
func NewPlayer(username string, now time.Time) *Player {
	return &Player{
		ID:                 uuid.NewString(),
		Username:           username,
		PerClickMultiplier: 1,
		CreatedAt:          now,
		LastActive:         now,
	}
}

// Stats is the view of a player that achievement progress is computed from.
type Stats struct {
	TotalKush      int64
	TotalClicks    int64
	UpgradesBought int64
}

func (p *Player) Stats(upgradesBought int64) Stats {
	return Stats{
		TotalKush:      p.TotalKush,
		TotalClicks:    p.TotalClicks,
		UpgradesBought: upgradesBought,
	}
}

// Validate checks the economy invariants of a player row.
func (p *Player) Validate() error {
	username := strings.TrimSpace(p.Username)
	switch {
	case username == "":
		return NewValidationError("username", "is required")
	case len(username) > MaxUsernameLength:
		return NewValidationError("username", "is too long")
	case p.TotalKush < 0:
		return NewValidationError("totalKush", "must not be negative")
	case p.TotalClicks < 0:
		return NewValidationError("totalClicks", "must not be negative")
	case p.PerClickMultiplier < 1:
		return NewValidationError("perClickMultiplier", "must be at least 1")
	case p.AutoIncomePerHour < 0:
		return NewValidationError("autoIncomePerHour", "must not be negative")
	case p.ClaimableTokens < 0:
		return NewValidationError("claimableTokens", "must not be negative")
	}
	return nil
}

// PlayerPatch is a partial update of a player. Nil fields are left untouched.
type PlayerPatch struct {
	Username           *string `json:"username"`
	TotalKush          *int64  `json:"totalKush"`
	TotalClicks        *int64  `json:"totalClicks"`
	PerClickMultiplier *int64  `json:"perClickMultiplier"`
	AutoIncomePerHour  *int64  `json:"autoIncomePerHour"`
	ClaimableTokens    *int64  `json:"claimableTokens"`
	WalletAddress      *string `json:"walletAddress"`
}

// Apply copies the set fields of the patch onto p.
func (pp PlayerPatch) Apply(p *Player) {
	if pp.Username != nil {
		p.Username = strings.TrimSpace(*pp.Username)
	}
	if pp.TotalKush != nil {
		p.TotalKush = *pp.TotalKush
	}
	if pp.TotalClicks != nil {
		p.TotalClicks = *pp.TotalClicks
	}
	if pp.PerClickMultiplier != nil {
		p.PerClickMultiplier = *pp.PerClickMultiplier
	}
	if pp.AutoIncomePerHour != nil {
		p.AutoIncomePerHour = *pp.AutoIncomePerHour
	}
	if pp.ClaimableTokens != nil {
		p.ClaimableTokens = *pp.ClaimableTokens
	}
	if pp.WalletAddress != nil {
		addr := *pp.WalletAddress
		p.WalletAddress = &addr
	}
}
