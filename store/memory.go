package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authvault/common"
)

// MemoryRepository keeps records in a map guarded by a mutex. The lock makes
// CreateIfAbsent a single atomic check-and-insert, mirroring the conditional
// write of the durable backends. Intended for tests and local development.
type MemoryRepository struct {
	mu      sync.Mutex
	byEmail map[string]*UserRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]*UserRecord)}
}

func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, record *UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[record.Email]; ok {
		return common.ErrAlreadyExists
	}

	stored := *record
	r.byEmail[record.Email] = &stored

	return nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}

	found := *record
	return &found, nil
}
