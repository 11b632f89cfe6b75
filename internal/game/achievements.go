package game

import (
	"context"
	"slices"

	"kushklicker/internal/domain"
	"kushklicker/internal/repository"
)

// evaluate advances the player's achievements of the given requirement types
// (all types when none are given) and returns those completed by this call.
// Missing PlayerAchievement rows are created on the way. It must run inside
// the player's atomic unit.
func (e *Engine) evaluate(ctx context.Context, s repository.Store, p *domain.Player, types ...domain.RequirementType) ([]*domain.Achievement, error) {
	achievements, err := s.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.ListPlayerAchievements(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[string]*domain.PlayerAchievement, len(rows))
	for _, pa := range rows {
		byAchievement[pa.AchievementID] = pa
	}

	var stats *domain.Stats
	now := e.now()
	completed := []*domain.Achievement{}
	for _, a := range achievements {
		if len(types) > 0 && !slices.Contains(types, a.RequirementType) {
			continue
		}
		pa, exists := byAchievement[a.ID]
		if exists && pa.Completed {
			continue
		}
		if !exists {
			pa = &domain.PlayerAchievement{PlayerID: p.ID, AchievementID: a.ID}
		}

		if stats == nil {
			bought, err := upgradesBought(ctx, s, p.ID)
			if err != nil {
				return nil, err
			}
			st := p.Stats(bought)
			stats = &st
		}

		changed, done := pa.Advance(a.RequirementType.Progress(*stats), a.Requirement, now)
		if changed || !exists {
			if err := s.UpsertPlayerAchievement(ctx, pa); err != nil {
				return nil, err
			}
		}
		if done {
			completed = append(completed, a)
		}
	}

	return completed, nil
}

// reportCompleted is called once the unit that completed the achievements
// has been committed.
func (e *Engine) reportCompleted(playerID string, completed []*domain.Achievement) {
	for _, a := range completed {
		AchievementsCompleted.WithLabelValues(a.Name).Inc()
		e.log.Info("achievement completed", "player_id", playerID, "achievement", a.Name)
	}
}

// upgradesBought is the total number of upgrade units the player owns.
func upgradesBought(ctx context.Context, s repository.Store, playerID string) (int64, error) {
	owned, err := s.ListPlayerUpgrades(ctx, playerID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, pu := range owned {
		total = addSat(total, pu.Quantity)
	}
	return total, nil
}
