package university

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
	"github.com/agaskrobot/fenix-university-registry/pkg/platform/sentinel"
	"github.com/agaskrobot/fenix-university-registry/pkg/requestcontext"
)

// PostgresStore persists registry records in PostgreSQL.
//
// The single table realizes both indexes: the unique constraint on
// account_id is the primary index and its uniqueness invariant; the pos
// column preserves insertion order for full listings and per-name buckets.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed university store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS universities (
    pos        BIGSERIAL PRIMARY KEY,
    account_id TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS universities_name_idx ON universities (name);
`

// EnsureSchema bootstraps the table. It is idempotent and never drops or
// truncates existing data, so re-running it over a live registry cannot
// reset state.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure universities schema: %w", err)
	}
	return nil
}

// CreateIfAccountAvailable inserts the record, relying on the unique
// constraint for the duplicate check. The constraint makes the check and the
// insert one atomic statement, so a losing concurrent writer gets
// sentinel.ErrAlreadyExists and the table is left untouched.
func (s *PostgresStore) CreateIfAccountAvailable(ctx context.Context, u *models.University) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO universities (account_id, name, created_at) VALUES ($1, $2, $3)`,
		u.AccountID, u.Name, requestcontext.Now(ctx),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert university: %w", err)
	}
	return nil
}

// FindByAccountID returns the record for the given account ID or
// sentinel.ErrNotFound.
func (s *PostgresStore) FindByAccountID(ctx context.Context, accountID string) (*models.University, error) {
	var u models.University
	err := s.db.QueryRowContext(ctx,
		`SELECT name, account_id FROM universities WHERE account_id = $1`,
		accountID,
	).Scan(&u.Name, &u.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find university: %w", err)
	}
	return &u, nil
}

// ListByName returns the name bucket in insertion order.
func (s *PostgresStore) ListByName(ctx context.Context, name string) ([]models.University, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, account_id FROM universities WHERE name = $1 ORDER BY pos`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("list universities by name: %w", err)
	}
	defer rows.Close()

	universities := []models.University{}
	for rows.Next() {
		var u models.University
		if err := rows.Scan(&u.Name, &u.AccountID); err != nil {
			return nil, fmt.Errorf("scan university: %w", err)
		}
		universities = append(universities, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list universities by name: %w", err)
	}
	return universities, nil
}

// ListAll returns every record paired with its account ID, in insertion
// order.
func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, account_id FROM universities ORDER BY pos`,
	)
	if err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var u models.University
		if err := rows.Scan(&u.Name, &u.AccountID); err != nil {
			return nil, fmt.Errorf("scan university: %w", err)
		}
		entries = append(entries, models.Entry{AccountID: u.AccountID, University: u})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return entries, nil
}

// Count returns the number of registered universities.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM universities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count universities: %w", err)
	}
	return count, nil
}
