package repository

import (
	"context"

	"kushklicker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const achievementColumns = `id, name, description, icon, requirement, requirement_type, reward`

func scanAchievement(row pgx.Row) (*domain.Achievement, error) {
	var a domain.Achievement
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.Requirement, &a.RequirementType, &a.Reward)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) ListAchievements(ctx context.Context) ([]*domain.Achievement, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+achievementColumns+` FROM achievements ORDER BY sort_order, id`)
	if err != nil {
		return nil, mapError(err, domain.ErrAchievementNotFound)
	}
	defer rows.Close()

	res := []*domain.Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (s *PostgresStore) GetAchievement(ctx context.Context, id string) (*domain.Achievement, error) {
	a, err := scanAchievement(s.q.QueryRow(ctx,
		`SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrAchievementNotFound)
	}
	return a, nil
}

func (s *PostgresStore) CreateAchievement(ctx context.Context, a *domain.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO achievements (`+achievementColumns+`, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7,
		         (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM achievements))`,
		a.ID, a.Name, a.Description, a.Icon, a.Requirement, a.RequirementType, a.Reward,
	)
	return mapError(err, domain.ErrAchievementNotFound)
}

const playerAchievementColumns = `id, player_id, achievement_id, progress, completed, completed_at`

func scanPlayerAchievement(row pgx.Row) (*domain.PlayerAchievement, error) {
	var pa domain.PlayerAchievement
	err := row.Scan(&pa.ID, &pa.PlayerID, &pa.AchievementID, &pa.Progress, &pa.Completed, &pa.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

func (s *PostgresStore) ListPlayerAchievements(ctx context.Context, playerID string) ([]*domain.PlayerAchievement, error) {
	rows, err := s.q.Query(ctx,
		`SELECT pa.id, pa.player_id, pa.achievement_id, pa.progress, pa.completed, pa.completed_at
		 FROM player_achievements pa
		 JOIN achievements a ON a.id = pa.achievement_id
		 WHERE pa.player_id = $1
		 ORDER BY a.sort_order, a.id`,
		playerID,
	)
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	defer rows.Close()

	res := []*domain.PlayerAchievement{}
	for rows.Next() {
		pa, err := scanPlayerAchievement(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, pa)
	}
	return res, rows.Err()
}

func (s *PostgresStore) GetPlayerAchievement(ctx context.Context, playerID, achievementID string) (*domain.PlayerAchievement, error) {
	pa, err := scanPlayerAchievement(s.q.QueryRow(ctx,
		`SELECT `+playerAchievementColumns+`
		 FROM player_achievements
		 WHERE player_id = $1 AND achievement_id = $2`,
		playerID, achievementID,
	))
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	return pa, nil
}

// UpsertPlayerAchievement never un-completes a row: completed and
// completed_at only move forward even if a stale copy is written.
func (s *PostgresStore) UpsertPlayerAchievement(ctx context.Context, pa *domain.PlayerAchievement) error {
	if pa.ID == "" {
		pa.ID = uuid.NewString()
	}
	err := s.q.QueryRow(ctx,
		`INSERT INTO player_achievements (`+playerAchievementColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (player_id, achievement_id) DO UPDATE
		 SET progress = CASE WHEN player_achievements.completed THEN player_achievements.progress ELSE EXCLUDED.progress END,
		     completed = player_achievements.completed OR EXCLUDED.completed,
		     completed_at = COALESCE(player_achievements.completed_at, EXCLUDED.completed_at)
		 RETURNING id`,
		pa.ID, pa.PlayerID, pa.AchievementID, pa.Progress, pa.Completed, pa.CompletedAt,
	).Scan(&pa.ID)
	return mapError(err, domain.ErrNotFound)
}
