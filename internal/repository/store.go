package repository

import (
	"context"

	"kushklicker/internal/domain"
)

// Store is everything the progression engine needs from persistence.
//
// Reads of missing rows return an error wrapping domain.ErrNotFound; a
// username collision returns domain.ErrDuplicateUsername.
type Store interface {
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error)
	// FindPlayerByUsernamePrefix returns the most recently active player whose
	// username starts with prefix.
	FindPlayerByUsernamePrefix(ctx context.Context, prefix string) (*domain.Player, error)
	// CreatePlayer stores the player together with one PlayerAchievement per
	// catalog achievement, as a single unit.
	CreatePlayer(ctx context.Context, p *domain.Player) error
	UpdatePlayer(ctx context.Context, p *domain.Player) error
	// GetTopPlayers orders by total_kush desc, then created_at asc.
	GetTopPlayers(ctx context.Context, limit int) ([]*domain.Player, error)

	ListUpgrades(ctx context.Context) ([]*domain.Upgrade, error)
	GetUpgrade(ctx context.Context, id string) (*domain.Upgrade, error)
	CreateUpgrade(ctx context.Context, u *domain.Upgrade) error

	GetPlayerUpgrade(ctx context.Context, playerID, upgradeID string) (*domain.PlayerUpgrade, error)
	ListPlayerUpgrades(ctx context.Context, playerID string) ([]*domain.PlayerUpgrade, error)
	UpsertPlayerUpgrade(ctx context.Context, pu *domain.PlayerUpgrade) error

	ListAchievements(ctx context.Context) ([]*domain.Achievement, error)
	GetAchievement(ctx context.Context, id string) (*domain.Achievement, error)
	CreateAchievement(ctx context.Context, a *domain.Achievement) error

	ListPlayerAchievements(ctx context.Context, playerID string) ([]*domain.PlayerAchievement, error)
	GetPlayerAchievement(ctx context.Context, playerID, achievementID string) (*domain.PlayerAchievement, error)
	UpsertPlayerAchievement(ctx context.Context, pa *domain.PlayerAchievement) error

	// WithPlayerLock runs fn as one atomic unit for the given player. Every
	// read and write fn makes through the passed Store belongs to that unit.
	// It fails with domain.ErrPlayerNotFound when the player does not exist.
	WithPlayerLock(ctx context.Context, playerID string, fn func(Store) error) error

	Ping(ctx context.Context) error
}
