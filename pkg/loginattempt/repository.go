package loginattempt

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is insert-only. Entries are never mutated or deleted.
type Repository interface {
	Insert(ctx context.Context, attempt Attempt) error
	// ListByUsername returns recent attempts for audit inspection, newest
	// first.
	ListByUsername(ctx context.Context, username string, limit int) ([]Attempt, error)
}

// PostgresRepository implements Repository on the login_attempts table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new login attempt repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, attempt Attempt) error {
	query := `
		INSERT INTO login_attempts (id, username, account_id, ip, user_agent, success, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		attempt.ID,
		attempt.Username,
		attempt.AccountID,
		attempt.IP,
		attempt.UserAgent,
		attempt.Success,
		attempt.Reason,
	)
	return err
}

func (r *PostgresRepository) ListByUsername(ctx context.Context, username string, limit int) ([]Attempt, error) {
	query := `
		SELECT id, username, account_id, ip, user_agent, success, failure_reason, created_at
		FROM login_attempts
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(
			&a.ID,
			&a.Username,
			&a.AccountID,
			&a.IP,
			&a.UserAgent,
			&a.Success,
			&a.Reason,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// InMemRepository implements Repository with an in-memory slice for
// development and tests.
type InMemRepository struct {
	mu       sync.RWMutex
	attempts []Attempt
}

// NewInMemRepository creates an empty in-memory attempt repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{}
}

func (r *InMemRepository) Insert(ctx context.Context, attempt Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt.CreatedAt = time.Now().UTC()
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *InMemRepository) ListByUsername(ctx context.Context, username string, limit int) ([]Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Attempt
	for i := len(r.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.attempts[i].Username == username {
			out = append(out, r.attempts[i])
		}
	}
	return out, nil
}
