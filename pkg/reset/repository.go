package reset

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists reset records.
type Repository interface {
	// InvalidateAndCreate atomically exhausts any active record for the
	// email and type, then inserts rec as the single live record.
	InvalidateAndCreate(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	GetByToken(ctx context.Context, token string) (Record, error)
	// GetActive returns the live record for the email and type.
	GetActive(ctx context.Context, email string, resetType Type) (Record, error)
	// AssignCode attaches a code to a pending record and moves it to
	// code_assigned.
	AssignCode(ctx context.Context, id uuid.UUID, code string) error
	// IncrementAttempts bumps the attempt counter in a single statement and
	// returns the new count, or ErrTooManyAttempts once the budget is spent.
	IncrementAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	// MarkConsumed finalizes the record after its single successful use.
	MarkConsumed(ctx context.Context, id uuid.UUID) error
	// Delete removes a record, used to compensate a failed delivery.
	Delete(ctx context.Context, id uuid.UUID) error
}

const resetColumns = `id, account_id, email, reset_type, code, token, status, attempts, expires_at, used_at, created_at, updated_at`

// PostgresRepository implements Repository on the reset_records table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new reset repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Email,
		&rec.Type,
		&rec.Code,
		&rec.Token,
		&rec.Status,
		&rec.Attempts,
		&rec.ExpiresAt,
		&rec.UsedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) InvalidateAndCreate(ctx context.Context, rec Record) (Record, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx)

	invalidate := `
		UPDATE reset_records
		SET status = 'exhausted',
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE email = $1
		AND reset_type = $2
		AND status IN ('pending', 'code_assigned', 'verified')
	`
	if _, err := tx.Exec(ctx, invalidate, rec.Email, rec.Type); err != nil {
		return Record{}, err
	}

	insert := `
		INSERT INTO reset_records (id, account_id, email, reset_type, token, status, attempts, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + resetColumns

	created, err := scanRecord(tx.QueryRow(ctx, insert,
		rec.ID, rec.AccountID, rec.Email, rec.Type, rec.Token, rec.Status, rec.Attempts, rec.ExpiresAt))
	if err != nil {
		return Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	query := `SELECT ` + resetColumns + ` FROM reset_records WHERE id = $1`
	return scanRecord(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (Record, error) {
	query := `SELECT ` + resetColumns + ` FROM reset_records WHERE token = $1`
	return scanRecord(r.db.QueryRow(ctx, query, token))
}

func (r *PostgresRepository) GetActive(ctx context.Context, email string, resetType Type) (Record, error) {
	query := `
		SELECT ` + resetColumns + `
		FROM reset_records
		WHERE email = $1
		AND reset_type = $2
		AND status IN ('pending', 'code_assigned', 'verified')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanRecord(r.db.QueryRow(ctx, query, email, resetType))
}

func (r *PostgresRepository) AssignCode(ctx context.Context, id uuid.UUID, code string) error {
	query := `
		UPDATE reset_records
		SET code = $2,
		    status = 'code_assigned',
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrRecordFinalized
	}
	return nil
}

func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error) {
	query := `
		UPDATE reset_records
		SET attempts = attempts + 1,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		AND attempts < $2
		RETURNING attempts
	`
	var attempts int
	err := r.db.QueryRow(ctx, query, id, maxAttempts).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, ErrTooManyAttempts
		}
		return 0, err
	}
	return attempts, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `
		UPDATE reset_records
		SET status = $2,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reset_records
		SET status = 'consumed',
		    used_at = NOW() AT TIME ZONE 'UTC',
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		AND status IN ('pending', 'code_assigned', 'verified')
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenInvalidOrExpired
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reset_records WHERE id = $1`, id)
	return err
}
