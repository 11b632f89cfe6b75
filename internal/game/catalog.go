package game

import (
	"context"
	"fmt"

	"kushklicker/internal/domain"
)

// DefaultUpgrades is the shop a fresh deployment starts with.
func DefaultUpgrades() []*domain.Upgrade {
	return []*domain.Upgrade{
		{
			Name:               "Better Fingers",
			Description:        "+1 Kush per click",
			Icon:               "fas fa-hand-pointer",
			Category:           domain.CategoryClick,
			BaseCost:           15,
			CostMultiplier:     domain.DefaultCostMultiplier,
			ClickPowerIncrease: 1,
		},
		{
			Name:               "Auto Clicker",
			Description:        "+0.5 Kush per second",
			Icon:               "fas fa-mouse-pointer",
			Category:           domain.CategoryAuto,
			BaseCost:           100,
			CostMultiplier:     domain.DefaultCostMultiplier,
			AutoIncomeIncrease: 1800,
			UnlockRequirement:  50,
		},
		{
			Name:               "Lucky Fingers",
			Description:        "+2 Kush per click",
			Icon:               "fas fa-magic",
			Category:           domain.CategoryClick,
			BaseCost:           500,
			CostMultiplier:     domain.DefaultCostMultiplier,
			ClickPowerIncrease: 2,
			UnlockRequirement:  200,
		},
		{
			Name:               "Golden Touch",
			Description:        "+5 Kush per click",
			Icon:               "fas fa-gem",
			Category:           domain.CategorySpecial,
			BaseCost:           2000,
			CostMultiplier:     domain.DefaultCostMultiplier,
			ClickPowerIncrease: 5,
			UnlockRequirement:  1000,
		},
		{
			Name:               "Kush Farm",
			Description:        "+5 Kush per second",
			Icon:               "fas fa-seedling",
			Category:           domain.CategoryAuto,
			BaseCost:           5000,
			CostMultiplier:     domain.DefaultCostMultiplier,
			AutoIncomeIncrease: 18000,
			UnlockRequirement:  2500,
		},
	}
}

// DefaultAchievements is the milestone list a fresh deployment starts with.
func DefaultAchievements() []*domain.Achievement {
	return []*domain.Achievement{
		{Name: "First Steps", Description: "Click 10 times", Icon: "fas fa-baby", Requirement: 10, RequirementType: domain.RequirementTotalClicks, Reward: 5},
		{Name: "Collect 5 KUSH", Description: "Earn your first 5 KUSH", Icon: "fas fa-cannabis", Requirement: 5, RequirementType: domain.RequirementTotalKush, Reward: 10},
		{Name: "Green Thumb", Description: "Reach 25 total KUSH", Icon: "fas fa-thumbs-up", Requirement: 25, RequirementType: domain.RequirementTotalKush, Reward: 25},
		{Name: "Speed Demon", Description: "Click 250 times", Icon: "fas fa-tachometer-alt", Requirement: 250, RequirementType: domain.RequirementTotalClicks, Reward: 50},
		{Name: "Kush Collector", Description: "Collect 1,000 KUSH", Icon: "fas fa-coins", Requirement: 1000, RequirementType: domain.RequirementTotalKush, Reward: 500},
		{Name: "Big Spender", Description: "Buy 5 upgrades", Icon: "fas fa-shopping-cart", Requirement: 5, RequirementType: domain.RequirementUpgradesBought, Reward: 100},
	}
}

// SeedCatalog stores the default upgrades and achievements when the
// respective catalog is still empty. It is safe to call on every start.
func (e *Engine) SeedCatalog(ctx context.Context) error {
	upgrades, err := e.store.ListUpgrades(ctx)
	if err != nil {
		return err
	}
	if len(upgrades) == 0 {
		for _, u := range DefaultUpgrades() {
			if err := u.Validate(); err != nil {
				return fmt.Errorf("upgrade %q: %w", u.Name, err)
			}
			if err := e.store.CreateUpgrade(ctx, u); err != nil {
				return fmt.Errorf("seed upgrade %q: %w", u.Name, err)
			}
		}
		e.log.Info("seeded upgrades", "count", len(DefaultUpgrades()))
	}

	achievements, err := e.store.ListAchievements(ctx)
	if err != nil {
		return err
	}
	if len(achievements) == 0 {
		for _, a := range DefaultAchievements() {
			if err := a.Validate(); err != nil {
				return fmt.Errorf("achievement %q: %w", a.Name, err)
			}
			if err := e.store.CreateAchievement(ctx, a); err != nil {
				return fmt.Errorf("seed achievement %q: %w", a.Name, err)
			}
		}
		e.log.Info("seeded achievements", "count", len(DefaultAchievements()))
	}
	return nil
}
