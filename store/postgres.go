package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/dmitrijs2005/authvault/dbx"
	"github.com/dmitrijs2005/authvault/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// uniqueViolation is the Postgres error code raised by the unique email
// index; it is the store-level signal for a registration conflict.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens a pgx connection for the given DSN, applies the
// embedded goose migrations, and returns a ready repository.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return NewPostgresRepository(db), nil
}

// CreateIfAbsent inserts the record. The unique index on email makes the
// insert the atomic conditional write the flows depend on; a duplicate email
// surfaces as common.ErrAlreadyExists regardless of who won the race.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, record *UserRecord) error {
	profile, err := json.Marshal(record.EncryptedProfile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	query :=
		`INSERT INTO users (id, email, password_hash, encrypted_profile, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err = r.db.ExecContext(ctx, query,
		record.UserID, record.Email, record.PasswordHash, profile, record.CreatedAt, record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	return nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	query :=
		`SELECT id, email, password_hash, encrypted_profile, created_at, updated_at FROM users
		 WHERE email = $1
		 `

	record := &UserRecord{}
	var profile []byte

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&record.UserID, &record.Email, &record.PasswordHash, &profile, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if err := json.Unmarshal(profile, &record.EncryptedProfile); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	return record, nil
}
