package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kushklicker/internal/domain"
	"kushklicker/internal/pkg/lock"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It is used when no
// DATABASE_URL is configured and in tests.
type MemoryStore struct {
	mu                 sync.RWMutex
	players            map[string]*domain.Player
	upgrades           map[string]*domain.Upgrade
	upgradeOrder       []string
	achievements       map[string]*domain.Achievement
	achievementOrder   []string
	playerUpgrades     map[string]*domain.PlayerUpgrade     // key: player|upgrade
	playerAchievements map[string]*domain.PlayerAchievement // key: player|achievement

	playerLocks *lock.KeyLock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:            make(map[string]*domain.Player),
		upgrades:           make(map[string]*domain.Upgrade),
		achievements:       make(map[string]*domain.Achievement),
		playerUpgrades:     make(map[string]*domain.PlayerUpgrade),
		playerAchievements: make(map[string]*domain.PlayerAchievement),
		playerLocks:        lock.New(),
	}
}

func pairKey(a, b string) string {
	return a + "|" + b
}

func (s *MemoryStore) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.players {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (s *MemoryStore) FindPlayerByUsernamePrefix(ctx context.Context, prefix string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.Player
	for _, p := range s.players {
		if !strings.HasPrefix(p.Username, prefix) {
			continue
		}
		if found == nil || p.LastActive.After(found.LastActive) {
			found = p
		}
	}
	if found == nil {
		return nil, domain.ErrPlayerNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *MemoryStore) usernameTaken(username, exceptID string) bool {
	for id, p := range s.players {
		if id != exceptID && p.Username == username {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := s.players[p.ID]; exists {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	if s.usernameTaken(p.Username, "") {
		return domain.ErrDuplicateUsername
	}

	cp := *p
	s.players[p.ID] = &cp

	for _, achID := range s.achievementOrder {
		s.playerAchievements[pairKey(p.ID, achID)] = &domain.PlayerAchievement{
			ID:            uuid.NewString(),
			PlayerID:      p.ID,
			AchievementID: achID,
		}
	}
	return nil
}

func (s *MemoryStore) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; !ok {
		return domain.ErrPlayerNotFound
	}
	if s.usernameTaken(p.Username, p.ID) {
		return domain.ErrDuplicateUsername
	}
	cp := *p
	s.players[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTopPlayers(ctx context.Context, limit int) ([]*domain.Player, error) {
	s.mu.RLock()
	res := make([]*domain.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		res = append(res, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].TotalKush != res[j].TotalKush {
			return res[i].TotalKush > res[j].TotalKush
		}
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})

	if limit >= 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *MemoryStore) ListUpgrades(ctx context.Context) ([]*domain.Upgrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*domain.Upgrade, 0, len(s.upgradeOrder))
	for _, id := range s.upgradeOrder {
		cp := *s.upgrades[id]
		res = append(res, &cp)
	}
	return res, nil
}

func (s *MemoryStore) GetUpgrade(ctx context.Context, id string) (*domain.Upgrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.upgrades[id]
	if !ok {
		return nil, domain.ErrUpgradeNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) CreateUpgrade(ctx context.Context, u *domain.Upgrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, exists := s.upgrades[u.ID]; !exists {
		s.upgradeOrder = append(s.upgradeOrder, u.ID)
	}
	cp := *u
	s.upgrades[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPlayerUpgrade(ctx context.Context, playerID, upgradeID string) (*domain.PlayerUpgrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pu, ok := s.playerUpgrades[pairKey(playerID, upgradeID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pu
	return &cp, nil
}

func (s *MemoryStore) ListPlayerUpgrades(ctx context.Context, playerID string) ([]*domain.PlayerUpgrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := []*domain.PlayerUpgrade{}
	for _, id := range s.upgradeOrder {
		if pu, ok := s.playerUpgrades[pairKey(playerID, id)]; ok {
			cp := *pu
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *MemoryStore) UpsertPlayerUpgrade(ctx context.Context, pu *domain.PlayerUpgrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(pu.PlayerID, pu.UpgradeID)
	if existing, ok := s.playerUpgrades[key]; ok {
		pu.ID = existing.ID
	} else if pu.ID == "" {
		pu.ID = uuid.NewString()
	}
	cp := *pu
	s.playerUpgrades[key] = &cp
	return nil
}

func (s *MemoryStore) ListAchievements(ctx context.Context) ([]*domain.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*domain.Achievement, 0, len(s.achievementOrder))
	for _, id := range s.achievementOrder {
		cp := *s.achievements[id]
		res = append(res, &cp)
	}
	return res, nil
}

func (s *MemoryStore) GetAchievement(ctx context.Context, id string) (*domain.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.achievements[id]
	if !ok {
		return nil, domain.ErrAchievementNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) CreateAchievement(ctx context.Context, a *domain.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, exists := s.achievements[a.ID]; !exists {
		s.achievementOrder = append(s.achievementOrder, a.ID)
	}
	cp := *a
	s.achievements[a.ID] = &cp
	return nil
}

func (s *MemoryStore) ListPlayerAchievements(ctx context.Context, playerID string) ([]*domain.PlayerAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := []*domain.PlayerAchievement{}
	for _, id := range s.achievementOrder {
		if pa, ok := s.playerAchievements[pairKey(playerID, id)]; ok {
			cp := *pa
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *MemoryStore) GetPlayerAchievement(ctx context.Context, playerID, achievementID string) (*domain.PlayerAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pa, ok := s.playerAchievements[pairKey(playerID, achievementID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pa
	return &cp, nil
}

func (s *MemoryStore) UpsertPlayerAchievement(ctx context.Context, pa *domain.PlayerAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(pa.PlayerID, pa.AchievementID)
	cp := *pa
	if existing, ok := s.playerAchievements[key]; ok {
		pa.ID = existing.ID
		cp.ID = existing.ID
		// completion only moves forward
		if existing.Completed {
			cp.Progress = existing.Progress
			cp.Completed = true
			cp.CompletedAt = existing.CompletedAt
		}
	} else if pa.ID == "" {
		pa.ID = uuid.NewString()
		cp.ID = pa.ID
	}
	s.playerAchievements[key] = &cp
	return nil
}

// WithPlayerLock holds the player's key lock while fn runs. Writes are applied
// directly, so a failing fn must not have written anything it wants undone;
// the engine only writes after every check has passed.
func (s *MemoryStore) WithPlayerLock(ctx context.Context, playerID string, fn func(Store) error) error {
	s.playerLocks.Lock(playerID)
	defer s.playerLocks.Unlock(playerID)

	s.mu.RLock()
	_, ok := s.players[playerID]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrPlayerNotFound
	}

	return fn(s)
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
