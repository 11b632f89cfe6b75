package repository

import (
	"context"
	"testing"

	"kushklicker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := domain.NewPlayer("copy", contractNow)
	require.NoError(t, s.CreatePlayer(ctx, p))

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	got.TotalKush = 1_000_000

	again, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.TotalKush)
}
