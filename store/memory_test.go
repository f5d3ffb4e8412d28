package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id, email string) *UserRecord {
	now := time.Now().UTC()
	return &UserRecord{
		UserID:       id,
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefake",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	rec := testRecord("u1", "a@b.com")
	require.NoError(t, repo.CreateIfAbsent(ctx, rec))

	found, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, rec.UserID, found.UserID)
	assert.Equal(t, rec.PasswordHash, found.PasswordHash)
}

func TestMemoryRepository_FindUnknownEmail(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.FindByEmail(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, testRecord("u1", "a@b.com")))

	err := repo.CreateIfAbsent(ctx, testRecord("u2", "a@b.com"))
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	// the losing write must leave no trace
	found, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, testRecord("u1", "a@b.com")))

	found, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	found.PasswordHash = "mutated"

	again, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.PasswordHash)
}

func TestMemoryRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const workers = 32

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- repo.CreateIfAbsent(ctx, testRecord("u"+string(rune('a'+n%26)), "race@b.com"))
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, common.ErrAlreadyExists):
			conflicted++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one concurrent create must win")
	assert.Equal(t, workers-1, conflicted)
}
