package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"veltra_back_end/internal/models"
)

// MemoryProductStore garde les produits en mémoire, protégés par mutex.
// Utilisé par les tests et par le mode DB_DRIVER=memory en développement.
type MemoryProductStore struct {
	mu    sync.RWMutex
	byID  map[gocql.UUID]models.Product
	bySKU map[string]gocql.UUID
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{
		byID:  make(map[gocql.UUID]models.Product),
		bySKU: make(map[string]gocql.UUID),
	}
}

func (s *MemoryProductStore) GetByID(_ context.Context, id gocql.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySKU[sku]
	if !ok {
		return nil, ErrNotFound
	}
	p := s.byID[id]
	return &p, nil
}

func (s *MemoryProductStore) List(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.byID {
		if f.Matches(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryProductStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySKU[p.SKU]; exists {
		return ErrDuplicateSKU
	}
	s.byID[p.ID] = *p
	s.bySKU[p.SKU] = p.ID
	return nil
}

func (s *MemoryProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	if old.SKU != p.SKU {
		if _, taken := s.bySKU[p.SKU]; taken {
			return ErrDuplicateSKU
		}
		delete(s.bySKU, old.SKU)
		s.bySKU[p.SKU] = p.ID
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) Delete(_ context.Context, id gocql.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.bySKU, p.SKU)
	delete(s.byID, id)
	return nil
}

// MemoryAuditLogStore garde le journal d'audit en mémoire, par ordre
// d'insertion
type MemoryAuditLogStore struct {
	mu      sync.RWMutex
	entries []models.AuditLogEntry
}

func NewMemoryAuditLogStore() *MemoryAuditLogStore {
	return &MemoryAuditLogStore{}
}

func (s *MemoryAuditLogStore) Insert(_ context.Context, e *models.AuditLogEntry) error {
	e.ApplyDefaults()
	if e.ID == (gocql.UUID{}) {
		e.ID = gocql.TimeUUID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *MemoryAuditLogStore) Find(_ context.Context, f models.LogFilter) ([]models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditLogEntry
	for i := range s.entries {
		if f.Matches(&s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	// Plus récent d'abord ; l'ordre d'insertion départage les égalités
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryAuditLogStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	deleted := 0
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}
