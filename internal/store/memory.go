package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
)

// MemoryStore is an in-process RegistrationStore, used in tests and for
// dry runs.
type MemoryStore struct {
	mu   sync.RWMutex
	regs map[string]models.Registration
	now  func() time.Time

	// Err, when set, is returned by every method.
	Err error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regs: make(map[string]models.Registration), now: time.Now}
}

// Create implements RegistrationStore.
func (m *MemoryStore) Create(ctx context.Context, reg *models.Registration) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stampNew(reg, m.now().UTC())
	reg.ID = uuid.NewString()
	m.regs[reg.ID] = *reg
	return reg.ID, nil
}

// Update implements RegistrationStore.
func (m *MemoryStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[id]
	if !ok {
		return &parsererror.NotFoundError{ID: id}
	}
	reg.UpdatedAt = m.now().UTC()
	if err := ApplyFields(&reg, fields); err != nil {
		return err
	}
	m.regs[id] = reg
	return nil
}

// Get implements RegistrationStore.
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Registration, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.regs[id]
	if !ok {
		return nil, &parsererror.NotFoundError{ID: id}
	}
	return &reg, nil
}

// List implements RegistrationStore.
func (m *MemoryStore) List(ctx context.Context) ([]models.Registration, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Registration, 0, len(m.regs))
	for _, r := range m.regs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Close implements RegistrationStore.
func (m *MemoryStore) Close() error { return nil }
