package repository

import (
	"context"

	"kushklicker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const upgradeColumns = `id, name, description, icon, category, base_cost, cost_multiplier,
	click_power_increase, auto_income_increase, unlock_requirement`

func scanUpgrade(row pgx.Row) (*domain.Upgrade, error) {
	var u domain.Upgrade
	err := row.Scan(&u.ID, &u.Name, &u.Description, &u.Icon, &u.Category, &u.BaseCost,
		&u.CostMultiplier, &u.ClickPowerIncrease, &u.AutoIncomeIncrease, &u.UnlockRequirement)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) ListUpgrades(ctx context.Context) ([]*domain.Upgrade, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+upgradeColumns+` FROM upgrades ORDER BY sort_order, base_cost, id`)
	if err != nil {
		return nil, mapError(err, domain.ErrUpgradeNotFound)
	}
	defer rows.Close()

	res := []*domain.Upgrade{}
	for rows.Next() {
		u, err := scanUpgrade(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *PostgresStore) GetUpgrade(ctx context.Context, id string) (*domain.Upgrade, error) {
	u, err := scanUpgrade(s.q.QueryRow(ctx,
		`SELECT `+upgradeColumns+` FROM upgrades WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrUpgradeNotFound)
	}
	return u, nil
}

func (s *PostgresStore) CreateUpgrade(ctx context.Context, u *domain.Upgrade) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO upgrades (`+upgradeColumns+`, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		         (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM upgrades))`,
		u.ID, u.Name, u.Description, u.Icon, u.Category, u.BaseCost, u.CostMultiplier,
		u.ClickPowerIncrease, u.AutoIncomeIncrease, u.UnlockRequirement,
	)
	return mapError(err, domain.ErrUpgradeNotFound)
}

func scanPlayerUpgrade(row pgx.Row) (*domain.PlayerUpgrade, error) {
	var pu domain.PlayerUpgrade
	if err := row.Scan(&pu.ID, &pu.PlayerID, &pu.UpgradeID, &pu.Quantity, &pu.PurchasedAt); err != nil {
		return nil, err
	}
	return &pu, nil
}

func (s *PostgresStore) GetPlayerUpgrade(ctx context.Context, playerID, upgradeID string) (*domain.PlayerUpgrade, error) {
	pu, err := scanPlayerUpgrade(s.q.QueryRow(ctx,
		`SELECT id, player_id, upgrade_id, quantity, purchased_at
		 FROM player_upgrades
		 WHERE player_id = $1 AND upgrade_id = $2`,
		playerID, upgradeID,
	))
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	return pu, nil
}

func (s *PostgresStore) ListPlayerUpgrades(ctx context.Context, playerID string) ([]*domain.PlayerUpgrade, error) {
	rows, err := s.q.Query(ctx,
		`SELECT pu.id, pu.player_id, pu.upgrade_id, pu.quantity, pu.purchased_at
		 FROM player_upgrades pu
		 JOIN upgrades u ON u.id = pu.upgrade_id
		 WHERE pu.player_id = $1
		 ORDER BY u.sort_order, u.id`,
		playerID,
	)
	if err != nil {
		return nil, mapError(err, domain.ErrNotFound)
	}
	defer rows.Close()

	res := []*domain.PlayerUpgrade{}
	for rows.Next() {
		pu, err := scanPlayerUpgrade(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, pu)
	}
	return res, rows.Err()
}

func (s *PostgresStore) UpsertPlayerUpgrade(ctx context.Context, pu *domain.PlayerUpgrade) error {
	if pu.ID == "" {
		pu.ID = uuid.NewString()
	}
	err := s.q.QueryRow(ctx,
		`INSERT INTO player_upgrades (id, player_id, upgrade_id, quantity, purchased_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (player_id, upgrade_id)
		 DO UPDATE SET quantity = EXCLUDED.quantity, purchased_at = EXCLUDED.purchased_at
		 RETURNING id`,
		pu.ID, pu.PlayerID, pu.UpgradeID, pu.Quantity, pu.PurchasedAt,
	).Scan(&pu.ID)
	return mapError(err, domain.ErrNotFound)
}
