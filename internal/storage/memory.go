// internal/storage/memory.go
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
)

// MemoryApplicantStore keeps applicants in process. IDs start at 1.
type MemoryApplicantStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.Applicant
	now    func() time.Time
}

func NewMemoryApplicantStore() *MemoryApplicantStore {
	return &MemoryApplicantStore{
		nextID: 1,
		byID:   make(map[int64]models.Applicant),
		now:    time.Now,
	}
}

func (s *MemoryApplicantStore) List(_ context.Context) ([]models.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Applicant, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryApplicantStore) Get(_ context.Context, id int64) (*models.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryApplicantStore) FindByIdentity(ctx context.Context, candidate models.Applicant) (*models.Applicant, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	match, ok := mortgage.MatchApplicant(candidate, all)
	if !ok {
		return nil, ErrNotFound
	}
	return match, nil
}

func (s *MemoryApplicantStore) Create(_ context.Context, a *models.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	s.byID[a.ID] = *a
	return nil
}

func (s *MemoryApplicantStore) Update(_ context.Context, a *models.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[a.ID]
	if !ok {
		return ErrConflict
	}
	a.CreatedAt = current.CreatedAt
	s.byID[a.ID] = *a
	return nil
}

func (s *MemoryApplicantStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryApplicantStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[id]
	return ok, nil
}

func (s *MemoryApplicantStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// MemoryProductStore keeps products in process. IDs start at 1.
type MemoryProductStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{
		nextID: 1,
		byID:   make(map[int64]models.Product),
	}
}

func (s *MemoryProductStore) List(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryProductStore) Get(_ context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.byID[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; !ok {
		return ErrConflict
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryProductStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[id]
	return ok, nil
}

func (s *MemoryProductStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
