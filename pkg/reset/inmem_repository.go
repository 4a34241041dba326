package reset

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository implements Repository with an in-memory map for
// development and tests.
type InMemRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]Record
}

// NewInMemRepository creates an empty in-memory reset repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		records: make(map[uuid.UUID]Record),
	}
}

func (r *InMemRepository) InvalidateAndCreate(ctx context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range r.records {
		if existing.Email == rec.Email && existing.Type == rec.Type && existing.Active() {
			existing.Status = StatusExhausted
			existing.UpdatedAt = now
			r.records[id] = existing
		}
	}

	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *InMemRepository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (r *InMemRepository) GetByToken(ctx context.Context, token string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.Token == token {
			return rec, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (r *InMemRepository) GetActive(ctx context.Context, email string, resetType Type) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *Record
	for _, rec := range r.records {
		rec := rec
		if rec.Email == email && rec.Type == resetType && rec.Active() {
			if found == nil || rec.CreatedAt.After(found.CreatedAt) {
				found = &rec
			}
		}
	}
	if found == nil {
		return Record{}, ErrRecordNotFound
	}
	return *found, nil
}

func (r *InMemRepository) AssignCode(ctx context.Context, id uuid.UUID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if rec.Status != StatusPending {
		return ErrRecordFinalized
	}
	rec.Code = code
	rec.Status = StatusCodeAssigned
	rec.UpdatedAt = time.Now().UTC()
	r.records[id] = rec
	return nil
}

func (r *InMemRepository) IncrementAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return 0, ErrRecordNotFound
	}
	if rec.Attempts >= maxAttempts {
		return 0, ErrTooManyAttempts
	}
	rec.Attempts++
	rec.UpdatedAt = time.Now().UTC()
	r.records[id] = rec
	return rec.Attempts, nil
}

func (r *InMemRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	r.records[id] = rec
	return nil
}

func (r *InMemRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || !rec.Active() {
		return ErrTokenInvalidOrExpired
	}
	now := time.Now().UTC()
	rec.Status = StatusConsumed
	rec.UsedAt = &now
	rec.UpdatedAt = now
	r.records[id] = rec
	return nil
}

func (r *InMemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}
