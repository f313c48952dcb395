package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tns/internal/registry/models"
	"tns/pkg/domain"
)

// LedgerStore is the transactional view of registry state handed to a
// RunInTx callback. Lookups of missing rows return sentinel.ErrNotFound;
// creating a row that exists returns sentinel.ErrAlreadyUsed; overdrawing a
// balance returns sentinel.ErrInsufficient.
//
//go:generate mockgen -source=ledger.go -destination=mocks/ledger_mock.go -package=mocks
type LedgerStore interface {
	Config(ctx context.Context) (*models.Config, error)
	CreateConfig(ctx context.Context, cfg *models.Config) error
	SaveConfig(ctx context.Context, cfg *models.Config) error

	FindSymbol(ctx context.Context, symbol string) (*models.SymbolRecord, error)
	FindSymbols(ctx context.Context, symbols []string) ([]*models.SymbolRecord, error)
	CreateSymbol(ctx context.Context, rec *models.SymbolRecord) error
	SaveSymbol(ctx context.Context, rec *models.SymbolRecord) error
	DeleteSymbol(ctx context.Context, symbol string) error

	Balance(ctx context.Context, account domain.Address, currency models.PaymentMethod) (uint64, error)
	Debit(ctx context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error
	Credit(ctx context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error

	AppendEvent(ctx context.Context, ev models.Event) error
}

// Ledger runs fn atomically: either every write fn makes is kept or none is.
type Ledger interface {
	RunInTx(ctx context.Context, fn func(store LedgerStore) error) error
}

// SymbolScanner pages through records for the keeper, ordered by symbol.
type SymbolScanner interface {
	// ListExpiredBefore returns records whose expiry is before cutoff.
	ListExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.SymbolRecord, error)
	// ListSymbols returns up to limit records with symbol > after.
	ListSymbols(ctx context.Context, after string, limit int) ([]*models.SymbolRecord, error)
}

// Outbox reads and acknowledges relayed events.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
