package asset

import (
	"context"
	"sync"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	"tns/pkg/platform/sentinel"
)

// InMemoryStore is a writable asset mirror used by tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	assets   map[domain.Address]models.Asset
	metadata map[domain.Address]models.Metadata
	holdings map[domain.Address]models.Holding
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		assets:   make(map[domain.Address]models.Asset),
		metadata: make(map[domain.Address]models.Metadata),
		holdings: make(map[domain.Address]models.Holding),
	}
}

func (s *InMemoryStore) Asset(_ context.Context, mint domain.Address) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[mint]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if a.Embedded != nil {
		md := *a.Embedded
		a.Embedded = &md
	}
	return &a, nil
}

func (s *InMemoryStore) LinkedMetadata(_ context.Context, addr domain.Address) (*models.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	md, ok := s.metadata[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &md, nil
}

func (s *InMemoryStore) Holding(_ context.Context, addr domain.Address) (*models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holdings[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &h, nil
}

// PutAsset stores an asset descriptor.
func (s *InMemoryStore) PutAsset(a models.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.Mint] = a
}

// PutLinkedMetadata stores a linked metadata record at its address.
func (s *InMemoryStore) PutLinkedMetadata(md models.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[md.Address] = md
}

// PutHolding stores a holding account.
func (s *InMemoryStore) PutHolding(h models.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings[h.Address] = h
}

// Rename changes the metadata symbol of mint wherever it is stored.
func (s *InMemoryStore) Rename(mint domain.Address, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.assets[mint]; ok && a.Embedded != nil {
		md := *a.Embedded
		md.Symbol = symbol
		a.Embedded = &md
		s.assets[mint] = a
	}
	addr := models.LinkedMetadataAddress(mint)
	if md, ok := s.metadata[addr]; ok {
		md.Symbol = symbol
		s.metadata[addr] = md
	}
}
