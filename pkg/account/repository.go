package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acct Account) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByUsername(ctx context.Context, username string) (Account, error)
	FindByEmailOrUsername(ctx context.Context, identifier string) (Account, error)
	FindByMobileNumber(ctx context.Context, mobile string) (Account, error)
	Update(ctx context.Context, acct Account) (Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	MarkEmailVerified(ctx context.Context, email string) error
	MarkMobileVerified(ctx context.Context, mobile string) error
	UpdateLastLoginAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

const accountColumns = `
	id, first_name, last_name, country_of_residence, nationality,
	email, email_verified, date_of_birth, is_over_18, accepted_terms,
	username, password_hash, security_question, security_answer_hash,
	street, house_number, city, postal_code,
	mobile_number, mobile_verified, bankroll_currency,
	is_active, last_login_at, registration_step, registration_completed,
	created_at, updated_at
`

// PostgresRepository implements Repository backed by the accounts table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new account repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.CountryOfResidence,
		&a.Nationality,
		&a.Email,
		&a.EmailVerified,
		&a.DateOfBirth,
		&a.IsOver18,
		&a.AcceptedTerms,
		&a.Username,
		&a.PasswordHash,
		&a.SecurityQuestion,
		&a.SecurityAnswerHash,
		&a.Street,
		&a.HouseNumber,
		&a.City,
		&a.PostalCode,
		&a.MobileNumber,
		&a.MobileVerified,
		&a.BankrollCurrency,
		&a.IsActive,
		&a.LastLoginAt,
		&a.RegistrationStep,
		&a.RegistrationCompleted,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// Create inserts a new account. A unique violation on email, username or
// mobile_number is mapped to the matching conflict error.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) (Account, error) {
	query := `
		INSERT INTO accounts (
			id, first_name, last_name, country_of_residence, nationality,
			email, date_of_birth, is_over_18, accepted_terms,
			is_active, registration_step
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + accountColumns

	row := r.db.QueryRow(ctx, query,
		acct.ID,
		acct.FirstName,
		acct.LastName,
		acct.CountryOfResidence,
		acct.Nationality,
		acct.Email,
		acct.DateOfBirth,
		acct.IsOver18,
		acct.AcceptedTerms,
		acct.IsActive,
		acct.RegistrationStep,
	)
	created, err := scanAccount(row)
	if err != nil {
		return Account{}, mapUniqueViolation(err)
	}
	return created, nil
}

// GetByID retrieves an account by its id
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves an account by email
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRow(ctx, query, email))
}

// FindByUsername retrieves an account by username
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(r.db.QueryRow(ctx, query, username))
}

// FindByEmailOrUsername retrieves an account matching the identifier as
// either email or username.
func (r *PostgresRepository) FindByEmailOrUsername(ctx context.Context, identifier string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 OR username = $1`
	return scanAccount(r.db.QueryRow(ctx, query, identifier))
}

// FindByMobileNumber retrieves an account by mobile number
func (r *PostgresRepository) FindByMobileNumber(ctx context.Context, mobile string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE mobile_number = $1`
	return scanAccount(r.db.QueryRow(ctx, query, mobile))
}

// Update writes back all mutable fields of the account.
func (r *PostgresRepository) Update(ctx context.Context, acct Account) (Account, error) {
	query := `
		UPDATE accounts
		SET username = $2,
		    password_hash = $3,
		    security_question = $4,
		    security_answer_hash = $5,
		    street = $6,
		    house_number = $7,
		    city = $8,
		    postal_code = $9,
		    mobile_number = $10,
		    bankroll_currency = $11,
		    is_active = $12,
		    registration_step = $13,
		    registration_completed = $14,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING ` + accountColumns

	row := r.db.QueryRow(ctx, query,
		acct.ID,
		acct.Username,
		acct.PasswordHash,
		acct.SecurityQuestion,
		acct.SecurityAnswerHash,
		acct.Street,
		acct.HouseNumber,
		acct.City,
		acct.PostalCode,
		acct.MobileNumber,
		acct.BankrollCurrency,
		acct.IsActive,
		acct.RegistrationStep,
		acct.RegistrationCompleted,
	)
	updated, err := scanAccount(row)
	if err != nil {
		return Account{}, mapUniqueViolation(err)
	}
	return updated, nil
}

// UpdatePasswordHash replaces the stored password hash
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// MarkEmailVerified flags the email address as verified
func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, email string) error {
	query := `
		UPDATE accounts
		SET email_verified = TRUE,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE email = $1
	`
	tag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// MarkMobileVerified flags the mobile number as verified
func (r *PostgresRepository) MarkMobileVerified(ctx context.Context, mobile string) error {
	query := `
		UPDATE accounts
		SET mobile_verified = TRUE,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE mobile_number = $1
	`
	tag, err := r.db.Exec(ctx, query, mobile)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateLastLoginAt records the time of a successful login
func (r *PostgresRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE accounts
		SET last_login_at = $2
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, at)
	return err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "accounts_email_key":
			return ErrEmailTaken
		case "accounts_username_key":
			return ErrUsernameTaken
		case "accounts_mobile_number_key":
			return ErrMobileTaken
		}
	}
	return err
}
