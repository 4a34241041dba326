package verification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists verification records.
type Repository interface {
	// InvalidateAndCreate atomically exhausts any active record for the
	// address and purpose, then inserts rec as the single live record.
	InvalidateAndCreate(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	// GetActive returns the live record for the address and purpose.
	GetActive(ctx context.Context, address string, purpose Purpose) (Record, error)
	// AssignCode attaches a code to a pending record and moves it to
	// code_assigned. Fails with ErrRecordFinalized once the record has left
	// the pending state.
	AssignCode(ctx context.Context, id uuid.UUID, code string) error
	// IncrementAttempts bumps the attempt counter in a single statement and
	// returns the new count. Once maxAttempts guesses are spent it returns
	// ErrTooManyAttempts without incrementing further.
	IncrementAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	// Delete removes a record, used to compensate a failed delivery.
	Delete(ctx context.Context, id uuid.UUID) error
}

const recordColumns = `id, address, purpose, code, status, attempts, expires_at, created_at, updated_at`

// PostgresRepository implements Repository on the verification_records table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new verification repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Address,
		&rec.Purpose,
		&rec.Code,
		&rec.Status,
		&rec.Attempts,
		&rec.ExpiresAt,
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
		UPDATE verification_records
		SET status = 'exhausted',
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE address = $1
		AND purpose = $2
		AND status IN ('pending', 'code_assigned')
	`
	if _, err := tx.Exec(ctx, invalidate, rec.Address, rec.Purpose); err != nil {
		return Record{}, err
	}

	insert := `
		INSERT INTO verification_records (id, address, purpose, status, attempts, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + recordColumns

	created, err := scanRecord(tx.QueryRow(ctx, insert,
		rec.ID, rec.Address, rec.Purpose, rec.Status, rec.Attempts, rec.ExpiresAt))
	if err != nil {
		return Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM verification_records WHERE id = $1`
	return scanRecord(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) GetActive(ctx context.Context, address string, purpose Purpose) (Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM verification_records
		WHERE address = $1
		AND purpose = $2
		AND status IN ('pending', 'code_assigned')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanRecord(r.db.QueryRow(ctx, query, address, purpose))
}

func (r *PostgresRepository) AssignCode(ctx context.Context, id uuid.UUID, code string) error {
	query := `
		UPDATE verification_records
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
		UPDATE verification_records
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
		UPDATE verification_records
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

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_records WHERE id = $1`, id)
	return err
}
