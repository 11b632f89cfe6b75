package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kushklicker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("PlayerCRUD", func(t *testing.T) { testPlayerCRUD(t, newStore(t)) })
	t.Run("DuplicateUsername", func(t *testing.T) { testDuplicateUsername(t, newStore(t)) })
	t.Run("TopPlayers", func(t *testing.T) { testTopPlayers(t, newStore(t)) })
	t.Run("UsernamePrefix", func(t *testing.T) { testUsernamePrefix(t, newStore(t)) })
	t.Run("Catalog", func(t *testing.T) { testCatalog(t, newStore(t)) })
	t.Run("PlayerUpgrades", func(t *testing.T) { testPlayerUpgrades(t, newStore(t)) })
	t.Run("PlayerAchievements", func(t *testing.T) { testPlayerAchievements(t, newStore(t)) })
	t.Run("WithPlayerLock", func(t *testing.T) { testWithPlayerLock(t, newStore(t)) })
}

var contractNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func mustCreatePlayer(t *testing.T, s Store, username string, kush int64, created time.Time) *domain.Player {
	t.Helper()
	p := domain.NewPlayer(username, created)
	p.TotalKush = kush
	require.NoError(t, s.CreatePlayer(context.Background(), p))
	return p
}

func testPlayerCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	wallet := "EQwallet"
	p := domain.NewPlayer("alice", contractNow)
	p.WalletAddress = &wallet
	require.NoError(t, s.CreatePlayer(ctx, p))

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, int64(1), got.PerClickMultiplier)
	require.NotNil(t, got.WalletAddress)
	assert.Equal(t, wallet, *got.WalletAddress)
	assert.Nil(t, got.ReferredBy)
	assert.True(t, contractNow.Equal(got.CreatedAt))

	byName, err := s.GetPlayerByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	got.TotalKush = 42
	got.TotalClicks = 7
	got.PerClickMultiplier = 3
	got.AutoIncomePerHour = 1800
	got.LastActive = contractNow.Add(time.Minute)
	require.NoError(t, s.UpdatePlayer(ctx, got))

	again, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), again.TotalKush)
	assert.Equal(t, int64(7), again.TotalClicks)
	assert.Equal(t, int64(3), again.PerClickMultiplier)
	assert.Equal(t, int64(1800), again.AutoIncomePerHour)
	assert.True(t, contractNow.Add(time.Minute).Equal(again.LastActive))

	_, err = s.GetPlayer(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetPlayerByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ghost := domain.NewPlayer("ghost", contractNow)
	assert.ErrorIs(t, s.UpdatePlayer(ctx, ghost), domain.ErrNotFound)
}

func testDuplicateUsername(t *testing.T, s Store) {
	ctx := context.Background()
	mustCreatePlayer(t, s, "dup", 0, contractNow)
	other := mustCreatePlayer(t, s, "other", 0, contractNow)

	err := s.CreatePlayer(ctx, domain.NewPlayer("dup", contractNow))
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	other.Username = "dup"
	assert.ErrorIs(t, s.UpdatePlayer(ctx, other), domain.ErrDuplicateUsername)
}

func testTopPlayers(t *testing.T, s Store) {
	ctx := context.Background()
	mustCreatePlayer(t, s, "low", 5, contractNow)
	older := mustCreatePlayer(t, s, "older", 500, contractNow)
	newer := mustCreatePlayer(t, s, "newer", 500, contractNow.Add(time.Second))
	mustCreatePlayer(t, s, "high", 5000, contractNow)

	top, err := s.GetTopPlayers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "high", top[0].Username)
	assert.Equal(t, older.ID, top[1].ID, "ties go to the older player")
	assert.Equal(t, newer.ID, top[2].ID)

	all, err := s.GetTopPlayers(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := s.GetTopPlayers(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testUsernamePrefix(t *testing.T, s Store) {
	ctx := context.Background()
	first := mustCreatePlayer(t, s, "telegram_42_first", 0, contractNow)
	second := mustCreatePlayer(t, s, "telegram_42_second", 0, contractNow)
	mustCreatePlayer(t, s, "telegram_420_other", 0, contractNow)

	first.LastActive = contractNow.Add(time.Hour)
	require.NoError(t, s.UpdatePlayer(ctx, first))
	second.LastActive = contractNow.Add(2 * time.Hour)
	require.NoError(t, s.UpdatePlayer(ctx, second))

	got, err := s.FindPlayerByUsernamePrefix(ctx, "telegram_42_")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID, "most recently active wins")

	_, err = s.FindPlayerByUsernamePrefix(ctx, "discord_42_")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCatalog(t *testing.T, s Store) {
	ctx := context.Background()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		u := &domain.Upgrade{Name: name, Category: domain.CategoryClick, BaseCost: 10, CostMultiplier: 150, ClickPowerIncrease: 1}
		require.NoError(t, s.CreateUpgrade(ctx, u))
		assert.NotEmpty(t, u.ID)
	}
	upgrades, err := s.ListUpgrades(ctx)
	require.NoError(t, err)
	require.Len(t, upgrades, 3)
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, []string{upgrades[0].Name, upgrades[1].Name, upgrades[2].Name}, "insertion order")

	u, err := s.GetUpgrade(ctx, upgrades[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", u.Name)
	_, err = s.GetUpgrade(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrUpgradeNotFound)

	a := &domain.Achievement{Name: "First Steps", Requirement: 10, RequirementType: domain.RequirementTotalClicks, Reward: 5}
	require.NoError(t, s.CreateAchievement(ctx, a))
	got, err := s.GetAchievement(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequirementTotalClicks, got.RequirementType)
	_, err = s.GetAchievement(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrAchievementNotFound)
}

func testPlayerUpgrades(t *testing.T, s Store) {
	ctx := context.Background()
	p := mustCreatePlayer(t, s, "buyer", 0, contractNow)
	u := &domain.Upgrade{Name: "Better Fingers", Category: domain.CategoryClick, BaseCost: 15, CostMultiplier: 150, ClickPowerIncrease: 1}
	require.NoError(t, s.CreateUpgrade(ctx, u))

	_, err := s.GetPlayerUpgrade(ctx, p.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	none, err := s.ListPlayerUpgrades(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, none, "an empty list must encode as [] not null")
	assert.Empty(t, none)

	pu := &domain.PlayerUpgrade{PlayerID: p.ID, UpgradeID: u.ID, Quantity: 1, PurchasedAt: contractNow}
	require.NoError(t, s.UpsertPlayerUpgrade(ctx, pu))
	pu.Quantity = 3
	require.NoError(t, s.UpsertPlayerUpgrade(ctx, pu))

	got, err := s.GetPlayerUpgrade(ctx, p.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Quantity)

	list, err := s.ListPlayerUpgrades(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got.ID, list[0].ID)
}

func testPlayerAchievements(t *testing.T, s Store) {
	ctx := context.Background()
	loner := mustCreatePlayer(t, s, "before_catalog", 0, contractNow)
	empty, err := s.ListPlayerAchievements(ctx, loner.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a := &domain.Achievement{Name: "Collect 5 KUSH", Requirement: 5, RequirementType: domain.RequirementTotalKush, Reward: 10}
	require.NoError(t, s.CreateAchievement(ctx, a))
	p := mustCreatePlayer(t, s, "achiever", 0, contractNow)

	rows, err := s.ListPlayerAchievements(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "creating a player creates its achievement rows")
	assert.False(t, rows[0].Completed)

	pa, err := s.GetPlayerAchievement(ctx, p.ID, a.ID)
	require.NoError(t, err)
	pa.Advance(5, a.Requirement, contractNow)
	require.NoError(t, s.UpsertPlayerAchievement(ctx, pa))

	// a stale writer must not revoke completion
	stale := &domain.PlayerAchievement{ID: pa.ID, PlayerID: p.ID, AchievementID: a.ID, Progress: 1}
	require.NoError(t, s.UpsertPlayerAchievement(ctx, stale))

	got, err := s.GetPlayerAchievement(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, contractNow.Equal(*got.CompletedAt))
}

func testWithPlayerLock(t *testing.T, s Store) {
	ctx := context.Background()
	p := mustCreatePlayer(t, s, "locked", 0, contractNow)

	err := s.WithPlayerLock(ctx, "00000000-0000-0000-0000-000000000000", func(Store) error { return nil })
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	boom := errors.New("boom")
	err = s.WithPlayerLock(ctx, p.ID, func(Store) error { return boom })
	assert.ErrorIs(t, err, boom)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithPlayerLock(ctx, p.ID, func(tx Store) error {
				cur, err := tx.GetPlayer(ctx, p.ID)
				if err != nil {
					return err
				}
				cur.TotalClicks++
				return tx.UpdatePlayer(ctx, cur)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.TotalClicks)
}
