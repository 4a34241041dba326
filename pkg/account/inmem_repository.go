package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository implements Repository with an in-memory map for
// development and tests.
type InMemRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewInMemRepository creates an empty in-memory account repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		accounts: make(map[uuid.UUID]Account),
	}
}

func (r *InMemRepository) Create(ctx context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Email == acct.Email {
			return Account{}, ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	r.accounts[acct.ID] = acct
	return acct, nil
}

func (r *InMemRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

func (r *InMemRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Email == email {
			return acct, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *InMemRepository) FindByUsername(ctx context.Context, username string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Username != "" && acct.Username == username {
			return acct, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *InMemRepository) FindByEmailOrUsername(ctx context.Context, identifier string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Email == identifier || (acct.Username != "" && acct.Username == identifier) {
			return acct, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *InMemRepository) FindByMobileNumber(ctx context.Context, mobile string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.MobileNumber != "" && acct.MobileNumber == mobile {
			return acct, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *InMemRepository) Update(ctx context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[acct.ID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}

	for id, other := range r.accounts {
		if id == acct.ID {
			continue
		}
		if acct.Username != "" && other.Username == acct.Username {
			return Account{}, ErrUsernameTaken
		}
		if acct.MobileNumber != "" && other.MobileNumber == acct.MobileNumber {
			return Account{}, ErrMobileTaken
		}
	}

	acct.CreatedAt = stored.CreatedAt
	acct.UpdatedAt = time.Now().UTC()
	r.accounts[acct.ID] = acct
	return acct, nil
}

func (r *InMemRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	acct.PasswordHash = hash
	acct.UpdatedAt = time.Now().UTC()
	r.accounts[id] = acct
	return nil
}

func (r *InMemRepository) MarkEmailVerified(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, acct := range r.accounts {
		if acct.Email == email {
			acct.EmailVerified = true
			acct.UpdatedAt = time.Now().UTC()
			r.accounts[id] = acct
			return nil
		}
	}
	return ErrAccountNotFound
}

func (r *InMemRepository) MarkMobileVerified(ctx context.Context, mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, acct := range r.accounts {
		if acct.MobileNumber != "" && acct.MobileNumber == mobile {
			acct.MobileVerified = true
			acct.UpdatedAt = time.Now().UTC()
			r.accounts[id] = acct
			return nil
		}
	}
	return ErrAccountNotFound
}

func (r *InMemRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	acct.LastLoginAt = &at
	r.accounts[id] = acct
	return nil
}
