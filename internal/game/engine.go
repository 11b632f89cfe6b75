package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kushklicker/internal/domain"
	"kushklicker/internal/logger"
	"kushklicker/internal/repository"
)

// MaxPurchaseQuantity caps a single purchase so pricing stays bounded.
const MaxPurchaseQuantity = 1000

// ScoreIndex keeps a ranking of players by total KUSH outside the store.
type ScoreIndex interface {
	SetScore(ctx context.Context, playerID string, totalKush int64) error
	TopIDs(ctx context.Context, n int) ([]string, error)
}

// Options tune an Engine. The zero value is usable.
type Options struct {
	// EnforceUnlock rejects purchases while the player's total KUSH is below
	// the upgrade's unlock requirement.
	EnforceUnlock bool
	// Index, when set, mirrors every player's total KUSH and serves TopPlayers.
	Index ScoreIndex
	// Now overrides the clock.
	Now func() time.Time
}

// Engine applies clicks, purchases, passive income and achievement
// evaluation to players. Every state change runs inside the store's
// per-player atomic unit.
type Engine struct {
	store         repository.Store
	index         ScoreIndex
	enforceUnlock bool
	now           func() time.Time
	log           *slog.Logger
}

// NewEngine creates an engine over the given store
func NewEngine(store repository.Store, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:         store,
		index:         opts.Index,
		enforceUnlock: opts.EnforceUnlock,
		now:           func() time.Time { return now().UTC() },
		log:           logger.With("component", "engine"),
	}
}

// ClickResult is returned by RecordClick
type ClickResult struct {
	Player     *domain.Player        `json:"player"`
	KushGained int64                 `json:"kushGained"`
	Completed  []*domain.Achievement `json:"completedAchievements"`
}

// PurchaseResult is returned by PurchaseUpgrade
type PurchaseResult struct {
	Player    *domain.Player        `json:"player"`
	Upgrade   *domain.Upgrade       `json:"upgrade"`
	Cost      int64                 `json:"cost"`
	Quantity  int64                 `json:"quantity"`
	Owned     int64                 `json:"owned"`
	Completed []*domain.Achievement `json:"completedAchievements"`
}

// TickResult is returned by TickPassiveIncome
type TickResult struct {
	Player     *domain.Player        `json:"player"`
	KushGained int64                 `json:"kushGained"`
	Completed  []*domain.Achievement `json:"completedAchievements"`
}

// RecordClick credits one click worth perClickMultiplier KUSH.
func (e *Engine) RecordClick(ctx context.Context, playerID string) (*ClickResult, error) {
	res := &ClickResult{}
	err := e.store.WithPlayerLock(ctx, playerID, func(s repository.Store) error {
		p, err := s.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}

		res.KushGained = p.PerClickMultiplier
		p.TotalKush = addSat(p.TotalKush, p.PerClickMultiplier)
		p.TotalClicks = addSat(p.TotalClicks, 1)
		p.LastActive = e.now()
		if err := s.UpdatePlayer(ctx, p); err != nil {
			return err
		}

		completed, err := e.evaluate(ctx, s, p, domain.RequirementTotalClicks, domain.RequirementTotalKush)
		if err != nil {
			return err
		}
		res.Player = p
		res.Completed = completed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record click: %w", err)
	}

	ClicksTotal.Inc()
	KushEarned.WithLabelValues("click").Add(float64(res.KushGained))
	e.reportCompleted(playerID, res.Completed)
	e.syncScore(ctx, res.Player)
	return res, nil
}

// PurchaseUpgrade buys quantity units of an upgrade. A quantity of 0 means 1.
func (e *Engine) PurchaseUpgrade(ctx context.Context, playerID, upgradeID string, quantity int64) (*PurchaseResult, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > MaxPurchaseQuantity {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", MaxPurchaseQuantity))
	}

	res := &PurchaseResult{Quantity: quantity}
	err := e.store.WithPlayerLock(ctx, playerID, func(s repository.Store) error {
		p, err := s.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		u, err := s.GetUpgrade(ctx, upgradeID)
		if err != nil {
			return err
		}

		pu, err := s.GetPlayerUpgrade(ctx, playerID, upgradeID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			pu = &domain.PlayerUpgrade{PlayerID: playerID, UpgradeID: upgradeID}
		case err != nil:
			return err
		}

		cost := Cost(u, pu.Quantity, quantity)
		if p.TotalKush < cost {
			return &domain.InsufficientFundsError{Required: cost, Available: p.TotalKush}
		}
		if e.enforceUnlock && p.TotalKush < u.UnlockRequirement {
			return fmt.Errorf("%w: requires %d total KUSH", domain.ErrUpgradeLocked, u.UnlockRequirement)
		}

		now := e.now()
		p.TotalKush -= cost
		p.PerClickMultiplier = addSat(p.PerClickMultiplier, mulSat(u.ClickPowerIncrease, quantity))
		p.AutoIncomePerHour = addSat(p.AutoIncomePerHour, mulSat(u.AutoIncomeIncrease, quantity))
		p.LastActive = now
		if err := s.UpdatePlayer(ctx, p); err != nil {
			return err
		}

		pu.Quantity = addSat(pu.Quantity, quantity)
		pu.PurchasedAt = now
		if err := s.UpsertPlayerUpgrade(ctx, pu); err != nil {
			return err
		}

		completed, err := e.evaluate(ctx, s, p, domain.RequirementUpgradesBought, domain.RequirementTotalKush)
		if err != nil {
			return err
		}
		res.Player = p
		res.Upgrade = u
		res.Cost = cost
		res.Owned = pu.Quantity
		res.Completed = completed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("purchase upgrade: %w", err)
	}

	UpgradesPurchased.WithLabelValues(res.Upgrade.Name).Add(float64(quantity))
	e.reportCompleted(playerID, res.Completed)
	e.syncScore(ctx, res.Player)
	e.log.Debug("upgrade purchased",
		"player_id", playerID,
		"upgrade", res.Upgrade.Name,
		"quantity", quantity,
		"cost", res.Cost,
	)
	return res, nil
}

// TickPassiveIncome credits floor(autoIncomePerHour * elapsedSeconds / 3600).
// Nothing is written when the gain is zero.
func (e *Engine) TickPassiveIncome(ctx context.Context, playerID string, elapsedSeconds int64) (*TickResult, error) {
	if elapsedSeconds < 0 {
		return nil, domain.NewValidationError("elapsedSeconds", "must not be negative")
	}

	res := &TickResult{Completed: []*domain.Achievement{}}
	err := e.store.WithPlayerLock(ctx, playerID, func(s repository.Store) error {
		p, err := s.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		res.Player = p

		gain := PassiveIncome(p.AutoIncomePerHour, elapsedSeconds)
		if gain == 0 {
			return nil
		}
		res.KushGained = gain
		p.TotalKush = addSat(p.TotalKush, gain)
		p.LastActive = e.now()
		if err := s.UpdatePlayer(ctx, p); err != nil {
			return err
		}

		completed, err := e.evaluate(ctx, s, p, domain.RequirementTotalKush)
		if err != nil {
			return err
		}
		res.Completed = completed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tick passive income: %w", err)
	}

	if res.KushGained > 0 {
		KushEarned.WithLabelValues("passive").Add(float64(res.KushGained))
		e.syncScore(ctx, res.Player)
	}
	e.reportCompleted(playerID, res.Completed)
	return res, nil
}

// EvaluateAchievements re-checks the player's achievements of the given
// requirement types, or all of them when none are given, and returns the ones
// completed by this call.
func (e *Engine) EvaluateAchievements(ctx context.Context, playerID string, types ...domain.RequirementType) ([]*domain.Achievement, error) {
	var completed []*domain.Achievement
	err := e.store.WithPlayerLock(ctx, playerID, func(s repository.Store) error {
		p, err := s.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		completed, err = e.evaluate(ctx, s, p, types...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	e.reportCompleted(playerID, completed)
	return completed, nil
}

// syncScore mirrors the player's total into the score index. Failures only
// degrade the leaderboard, so they are logged and dropped.
func (e *Engine) syncScore(ctx context.Context, p *domain.Player) {
	if e.index == nil || p == nil {
		return
	}
	if err := e.index.SetScore(ctx, p.ID, p.TotalKush); err != nil {
		e.log.Warn("score index update failed", "player_id", p.ID, "error", err)
	}
}
