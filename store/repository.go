// Package store persists user records behind a small repository interface
// with conditional-create semantics. Implementations exist for DynamoDB,
// PostgreSQL, and an in-memory map.
package store

import "context"

// Repository is the credential store consumed by the flows. Both methods
// take the already-normalized email.
//
// CreateIfAbsent must be atomic on email uniqueness at the store level:
// under concurrent creates with the same email exactly one call succeeds and
// the rest return common.ErrAlreadyExists, with no partial record left
// behind. FindByEmail returns common.ErrNotFound for unknown emails; any
// other failure wraps common.ErrUnavailable.
type Repository interface {
	CreateIfAbsent(ctx context.Context, record *UserRecord) error
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
}
