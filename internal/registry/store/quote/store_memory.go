package quote

import (
	"context"
	"sync"
	"time"

	"tns/internal/registry/models"
	"tns/internal/registry/oracle"
	"tns/pkg/domain"
	"tns/pkg/platform/sentinel"
)

type heldQuote struct {
	quote     oracle.Quote
	expiresAt time.Time
}

// InMemoryStore keeps quote accounts in a map. Accounts lapse after the same
// window as the Redis store. Len exposes leak checks to tests.
type InMemoryStore struct {
	mu     sync.Mutex
	quotes map[domain.Address]heldQuote
	ttl    time.Duration
	now    func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		quotes: make(map[domain.Address]heldQuote),
		ttl:    models.MaxPriceStaleness,
		now:    time.Now,
	}
}

func (s *InMemoryStore) Put(_ context.Context, addr domain.Address, q *oracle.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if held, ok := s.quotes[addr]; ok && now.Before(held.expiresAt) {
		return sentinel.ErrAlreadyUsed
	}
	s.quotes[addr] = heldQuote{quote: *q, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, addr domain.Address) (*oracle.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	held, ok := s.quotes[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(held.expiresAt) {
		delete(s.quotes, addr)
		return nil, sentinel.ErrExpired
	}
	q := held.quote
	return &q, nil
}

func (s *InMemoryStore) Delete(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotes[addr]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.quotes, addr)
	return nil
}

func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}
