package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"kushklicker/internal/domain"
	"kushklicker/internal/repository"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// NewPlayerInput holds the fields a client may set when registering.
type NewPlayerInput struct {
	Username      string  `json:"username"`
	WalletAddress *string `json:"walletAddress"`
	ReferredBy    *string `json:"referredBy"`
}

// CreatePlayer registers a player with the starting economy and one
// achievement row per catalog achievement.
func (e *Engine) CreatePlayer(ctx context.Context, in NewPlayerInput) (*domain.Player, error) {
	p := domain.NewPlayer(strings.TrimSpace(in.Username), e.now())
	p.WalletAddress = in.WalletAddress
	p.ReferredBy = in.ReferredBy
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if _, err := e.store.GetPlayerByUsername(ctx, p.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := e.store.CreatePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	e.syncScore(ctx, p)
	e.log.Info("player created", "player_id", p.ID, "username", p.Username)
	return p, nil
}

func (e *Engine) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	return e.store.GetPlayer(ctx, id)
}

func (e *Engine) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	return e.store.GetPlayerByUsername(ctx, strings.TrimSpace(username))
}

// ResolvePlayer looks a player up by id first and by username second.
func (e *Engine) ResolvePlayer(ctx context.Context, ref string) (*domain.Player, error) {
	p, err := e.store.GetPlayer(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	p, err = e.store.GetPlayerByUsername(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrPlayerNotFound
	}
	return p, err
}

// UpdatePlayer applies a partial update. The result must still satisfy the
// player invariants. Achievements are re-evaluated when a stat was touched.
func (e *Engine) UpdatePlayer(ctx context.Context, id string, patch domain.PlayerPatch) (*domain.Player, error) {
	var (
		updated   *domain.Player
		completed []*domain.Achievement
	)
	err := e.store.WithPlayerLock(ctx, id, func(s repository.Store) error {
		p, err := s.GetPlayer(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(p)
		if err := p.Validate(); err != nil {
			return err
		}
		p.LastActive = e.now()
		if err := s.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		if patch.TotalKush != nil || patch.TotalClicks != nil {
			completed, err = e.evaluate(ctx, s, p, domain.RequirementTotalKush, domain.RequirementTotalClicks)
			if err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}
	e.syncScore(ctx, updated)
	e.reportCompleted(id, completed)
	return updated, nil
}

// LinkAccount renames the player called username to linkPrefix+username so
// a chat account can find it again with FindLinkedPlayer.
func (e *Engine) LinkAccount(ctx context.Context, username, linkPrefix string) (*domain.Player, error) {
	p, err := e.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	linked := linkPrefix + p.Username
	return e.UpdatePlayer(ctx, p.ID, domain.PlayerPatch{Username: &linked})
}

// FindLinkedPlayer returns the most recently active player whose username
// carries the given link prefix.
func (e *Engine) FindLinkedPlayer(ctx context.Context, linkPrefix string) (*domain.Player, error) {
	return e.store.FindPlayerByUsernamePrefix(ctx, linkPrefix)
}

// TopPlayers returns up to n players by total KUSH, highest first. n is
// clamped to [1, MaxLeaderboardSize]; zero or less means the default size.
func (e *Engine) TopPlayers(ctx context.Context, n int) ([]*domain.Player, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	if n > MaxLeaderboardSize {
		n = MaxLeaderboardSize
	}

	if e.index != nil {
		players, err := e.topFromIndex(ctx, n)
		if err == nil && len(players) > 0 {
			return players, nil
		}
		if err != nil {
			e.log.Warn("score index read failed, using store", "error", err)
		}
	}
	return e.store.GetTopPlayers(ctx, n)
}

func (e *Engine) topFromIndex(ctx context.Context, n int) ([]*domain.Player, error) {
	ids, err := e.index.TopIDs(ctx, n)
	if err != nil {
		return nil, err
	}
	players := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		p, err := e.store.GetPlayer(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	// the index may lag the store, so the store's totals decide the order
	sort.SliceStable(players, func(i, j int) bool {
		return ranksBefore(players[i], players[j])
	})
	return players, nil
}

func ranksBefore(a, b *domain.Player) bool {
	if a.TotalKush != b.TotalKush {
		return a.TotalKush > b.TotalKush
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// RebuildIndex pushes every player's total into the score index.
func (e *Engine) RebuildIndex(ctx context.Context) (int, error) {
	if e.index == nil {
		return 0, nil
	}
	players, err := e.store.GetTopPlayers(ctx, -1)
	if err != nil {
		return 0, err
	}
	for _, p := range players {
		if err := e.index.SetScore(ctx, p.ID, p.TotalKush); err != nil {
			return 0, fmt.Errorf("rebuild score index: %w", err)
		}
	}
	return len(players), nil
}

func (e *Engine) ListUpgrades(ctx context.Context) ([]*domain.Upgrade, error) {
	return e.store.ListUpgrades(ctx)
}

// ListPlayerUpgrades returns the upgrades the player owns.
func (e *Engine) ListPlayerUpgrades(ctx context.Context, playerID string) ([]*domain.PlayerUpgrade, error) {
	if _, err := e.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	return e.store.ListPlayerUpgrades(ctx, playerID)
}

// CostQuote previews a purchase without performing it.
type CostQuote struct {
	UpgradeID  string `json:"upgradeId"`
	Owned      int64  `json:"owned"`
	Quantity   int64  `json:"quantity"`
	Cost       int64  `json:"cost"`
	Available  int64  `json:"available"`
	Affordable bool   `json:"affordable"`
	Locked     bool   `json:"locked"`
}

// QuoteUpgrade prices quantity units of an upgrade for the player.
func (e *Engine) QuoteUpgrade(ctx context.Context, playerID, upgradeID string, quantity int64) (*CostQuote, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > MaxPurchaseQuantity {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", MaxPurchaseQuantity))
	}
	p, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	u, err := e.store.GetUpgrade(ctx, upgradeID)
	if err != nil {
		return nil, err
	}
	var owned int64
	pu, err := e.store.GetPlayerUpgrade(ctx, playerID, upgradeID)
	switch {
	case err == nil:
		owned = pu.Quantity
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	cost := Cost(u, owned, quantity)
	return &CostQuote{
		UpgradeID:  u.ID,
		Owned:      owned,
		Quantity:   quantity,
		Cost:       cost,
		Available:  p.TotalKush,
		Affordable: p.TotalKush >= cost,
		Locked:     e.enforceUnlock && p.TotalKush < u.UnlockRequirement,
	}, nil
}

func (e *Engine) ListAchievements(ctx context.Context) ([]*domain.Achievement, error) {
	return e.store.ListAchievements(ctx)
}

// PlayerAchievements merges the catalog with the player's progress, in
// catalog order. Achievements without a row show as zero progress.
func (e *Engine) PlayerAchievements(ctx context.Context, playerID string) ([]*domain.AchievementProgress, error) {
	if _, err := e.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	achievements, err := e.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.ListPlayerAchievements(ctx, playerID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[string]*domain.PlayerAchievement, len(rows))
	for _, pa := range rows {
		byAchievement[pa.AchievementID] = pa
	}

	out := make([]*domain.AchievementProgress, 0, len(achievements))
	for _, a := range achievements {
		pa, ok := byAchievement[a.ID]
		if !ok {
			pa = &domain.PlayerAchievement{PlayerID: playerID, AchievementID: a.ID}
		}
		out = append(out, &domain.AchievementProgress{
			Achievement: *a,
			Progress:    pa.Progress,
			Completed:   pa.Completed,
			CompletedAt: pa.CompletedAt,
			Percent:     pa.Percent(a.Requirement),
		})
	}
	return out, nil
}
