// Package ledger persists registry state: the config singleton, symbol
// records, fee balances and the event outbox.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
)

type balanceKey struct {
	account  domain.Address
	currency models.PaymentMethod
}

type state struct {
	config   *models.Config
	symbols  map[string]models.SymbolRecord
	balances map[balanceKey]uint64
	outbox   []models.OutboxEntry
	seq      int64
}

func (s *state) clone() *state {
	out := &state{
		symbols:  maps.Clone(s.symbols),
		balances: maps.Clone(s.balances),
		outbox:   slices.Clone(s.outbox),
		seq:      s.seq,
	}
	if s.config != nil {
		out.config = copyConfig(s.config)
	}
	return out
}

// InMemoryStore serializes transactions behind one mutex. Each transaction
// works on a copy of the state that replaces the original only on success.
type InMemoryStore struct {
	mu    sync.Mutex
	state *state
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{state: &state{
		symbols:  make(map[string]models.SymbolRecord),
		balances: make(map[balanceKey]uint64),
	}}
}

func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(store ports.LedgerStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&memoryTx{st: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// ListExpiredBefore returns records whose expiry is before cutoff, oldest first.
func (s *InMemoryStore) ListExpiredBefore(_ context.Context, cutoff time.Time, limit int) ([]*models.SymbolRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SymbolRecord
	for _, rec := range s.state.symbols {
		if rec.ExpiresAt.Before(cutoff) {
			r := rec
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListSymbols(_ context.Context, after string, limit int) ([]*models.SymbolRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := slices.Sorted(maps.Keys(s.state.symbols))
	var out []*models.SymbolRecord
	for _, k := range keys {
		if k <= after {
			continue
		}
		r := s.state.symbols[k]
		out = append(out, &r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) Pending(_ context.Context, limit int) ([]models.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OutboxEntry
	for _, e := range s.state.outbox {
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished drops published entries from the in-memory outbox.
func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.outbox = slices.DeleteFunc(s.state.outbox, func(e models.OutboxEntry) bool {
		return slices.Contains(ids, e.ID)
	})
	return nil
}

// memoryTx is the LedgerStore view over one staged state.
type memoryTx struct {
	st *state
}

func (t *memoryTx) Config(_ context.Context) (*models.Config, error) {
	if t.st.config == nil {
		return nil, sentinel.ErrNotFound
	}
	return copyConfig(t.st.config), nil
}

func (t *memoryTx) CreateConfig(_ context.Context, cfg *models.Config) error {
	if t.st.config != nil {
		return sentinel.ErrAlreadyUsed
	}
	t.st.config = copyConfig(cfg)
	return nil
}

func (t *memoryTx) SaveConfig(_ context.Context, cfg *models.Config) error {
	if t.st.config == nil {
		return sentinel.ErrNotFound
	}
	t.st.config = copyConfig(cfg)
	return nil
}

func (t *memoryTx) FindSymbol(_ context.Context, symbol string) (*models.SymbolRecord, error) {
	rec, ok := t.st.symbols[symbol]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (t *memoryTx) FindSymbols(_ context.Context, symbols []string) ([]*models.SymbolRecord, error) {
	var out []*models.SymbolRecord
	for _, sym := range symbols {
		if rec, ok := t.st.symbols[sym]; ok {
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (t *memoryTx) CreateSymbol(_ context.Context, rec *models.SymbolRecord) error {
	if _, ok := t.st.symbols[rec.Symbol]; ok {
		return sentinel.ErrAlreadyUsed
	}
	t.st.symbols[rec.Symbol] = *rec
	return nil
}

func (t *memoryTx) SaveSymbol(_ context.Context, rec *models.SymbolRecord) error {
	if _, ok := t.st.symbols[rec.Symbol]; !ok {
		return sentinel.ErrNotFound
	}
	t.st.symbols[rec.Symbol] = *rec
	return nil
}

func (t *memoryTx) DeleteSymbol(_ context.Context, symbol string) error {
	if _, ok := t.st.symbols[symbol]; !ok {
		return sentinel.ErrNotFound
	}
	delete(t.st.symbols, symbol)
	return nil
}

func (t *memoryTx) Balance(_ context.Context, account domain.Address, currency models.PaymentMethod) (uint64, error) {
	return t.st.balances[balanceKey{account, currency}], nil
}

func (t *memoryTx) Debit(_ context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	key := balanceKey{account, currency}
	if t.st.balances[key] < amount {
		return sentinel.ErrInsufficient
	}
	t.st.balances[key] -= amount
	return nil
}

func (t *memoryTx) Credit(_ context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	key := balanceKey{account, currency}
	if t.st.balances[key] > ^uint64(0)-amount {
		return fmt.Errorf("credit %s: balance overflow", account)
	}
	t.st.balances[key] += amount
	return nil
}

func (t *memoryTx) AppendEvent(_ context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	t.st.seq++
	t.st.outbox = append(t.st.outbox, models.OutboxEntry{
		ID:        uuid.New(),
		Seq:       t.st.seq,
		Type:      ev.Type,
		Symbol:    ev.Symbol,
		Payload:   payload,
		CreatedAt: ev.OccurredAt,
	})
	return nil
}

func copyConfig(c *models.Config) *models.Config {
	out := *c
	if c.ProtocolPriceFeed != nil {
		out.ProtocolPriceFeed = models.AddrPtr(*c.ProtocolPriceFeed)
	}
	return &out
}
