package cache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

const leaderboardKey = "kush:leaderboard"

// Leaderboard ranks player ids by total KUSH in a sorted set. Scores above
// 2^53 lose precision, so readers re-sort the hydrated players.
type Leaderboard struct {
	client *redis.Client
	key    string
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, key: leaderboardKey}
}

// SetScore stores the player's current total
func (l *Leaderboard) SetScore(ctx context.Context, playerID string, totalKush int64) error {
	return l.client.ZAdd(ctx, l.key, redis.Z{
		Score:  float64(totalKush),
		Member: playerID,
	}).Err()
}

// TopIDs returns up to n player ids, highest score first
func (l *Leaderboard) TopIDs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	return l.client.ZRevRange(ctx, l.key, 0, int64(n-1)).Result()
}
