package domain

import "time"

// Category groups upgrades in the shop.
type Category string

const (
	CategoryClick   Category = "click"
	CategoryAuto    Category = "auto"
	CategorySpecial Category = "special"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryClick, CategoryAuto, CategorySpecial:
		return true
	}
	return false
}

// DefaultCostMultiplier is x1.5 per owned unit, in percent.
const DefaultCostMultiplier = 150

// Upgrade is a catalog entry. It never changes after seeding.
type Upgrade struct {
	ID                 string   `db:"id" json:"id"`
	Name               string   `db:"name" json:"name"`
	Description        string   `db:"description" json:"description"`
	Icon               string   `db:"icon" json:"icon"`
	Category           Category `db:"category" json:"category"`
	BaseCost           int64    `db:"base_cost" json:"baseCost"`
	CostMultiplier     int64    `db:"cost_multiplier" json:"costMultiplier"`
	ClickPowerIncrease int64    `db:"click_power_increase" json:"clickPowerIncrease"`
	AutoIncomeIncrease int64    `db:"auto_income_increase" json:"autoIncomeIncrease"`
	UnlockRequirement  int64    `db:"unlock_requirement" json:"unlockRequirement"`
}

// Validate is run when the catalog is seeded; pricing relies on it.
func (u *Upgrade) Validate() error {
	switch {
	case u.Name == "":
		return NewValidationError("name", "is required")
	case !u.Category.Valid():
		return NewValidationError("category", "must be one of click, auto, special")
	case u.BaseCost <= 0:
		return NewValidationError("baseCost", "must be positive")
	case u.CostMultiplier <= 0:
		return NewValidationError("costMultiplier", "must be positive")
	case u.ClickPowerIncrease < 0:
		return NewValidationError("clickPowerIncrease", "must not be negative")
	case u.AutoIncomeIncrease < 0:
		return NewValidationError("autoIncomeIncrease", "must not be negative")
	case u.UnlockRequirement < 0:
		return NewValidationError("unlockRequirement", "must not be negative")
	}
	return nil
}

// PlayerUpgrade records how many units of an upgrade a player owns.
type PlayerUpgrade struct {
	ID          string    `db:"id" json:"id"`
	PlayerID    string    `db:"player_id" json:"playerId"`
	UpgradeID   string    `db:"upgrade_id" json:"upgradeId"`
	Quantity    int64     `db:"quantity" json:"quantity"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchasedAt"`
}
