package repository

import (
	"context"

	"kushklicker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const playerColumns = `id, username, total_kush, total_clicks, per_click_multiplier,
	auto_income_per_hour, claimable_tokens, wallet_address, referred_by, created_at, last_active`

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.TotalKush,
		&p.TotalClicks,
		&p.PerClickMultiplier,
		&p.AutoIncomePerHour,
		&p.ClaimableTokens,
		&p.WalletAddress,
		&p.ReferredBy,
		&p.CreatedAt,
		&p.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	p, err := scanPlayer(s.q.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

func (s *PostgresStore) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	p, err := scanPlayer(s.q.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE username = $1`, username))
	if err != nil {
		return nil, mapError(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

func (s *PostgresStore) FindPlayerByUsernamePrefix(ctx context.Context, prefix string) (*domain.Player, error) {
	// left() instead of LIKE: link prefixes contain '_', a LIKE wildcard
	p, err := scanPlayer(s.q.QueryRow(ctx,
		`SELECT `+playerColumns+`
		 FROM players
		 WHERE left(username, length($1)) = $1
		 ORDER BY last_active DESC
		 LIMIT 1`, prefix))
	if err != nil {
		return nil, mapError(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, p *domain.Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return s.inTx(ctx, func(q querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO players (`+playerColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, p.Username, p.TotalKush, p.TotalClicks, p.PerClickMultiplier,
			p.AutoIncomePerHour, p.ClaimableTokens, p.WalletAddress, p.ReferredBy,
			p.CreatedAt, p.LastActive,
		)
		if err != nil {
			return mapError(err, domain.ErrPlayerNotFound)
		}

		// one progress row per catalog achievement
		_, err = q.Exec(ctx,
			`INSERT INTO player_achievements (id, player_id, achievement_id)
			 SELECT gen_random_uuid()::text, $1, id FROM achievements`,
			p.ID,
		)
		return mapError(err, domain.ErrAchievementNotFound)
	})
}

func (s *PostgresStore) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE players
		 SET username = $2, total_kush = $3, total_clicks = $4, per_click_multiplier = $5,
		     auto_income_per_hour = $6, claimable_tokens = $7, wallet_address = $8, last_active = $9
		 WHERE id = $1`,
		p.ID, p.Username, p.TotalKush, p.TotalClicks, p.PerClickMultiplier,
		p.AutoIncomePerHour, p.ClaimableTokens, p.WalletAddress, p.LastActive,
	)
	if err != nil {
		return mapError(err, domain.ErrPlayerNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (s *PostgresStore) GetTopPlayers(ctx context.Context, limit int) ([]*domain.Player, error) {
	// LIMIT NULL means no limit
	var lim any = limit
	if limit < 0 {
		lim = nil
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+playerColumns+`
		 FROM players
		 ORDER BY total_kush DESC, created_at ASC, id ASC
		 LIMIT $1`, lim)
	if err != nil {
		return nil, mapError(err, domain.ErrPlayerNotFound)
	}
	defer rows.Close()

	res := []*domain.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
