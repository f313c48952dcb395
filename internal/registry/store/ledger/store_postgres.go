package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tns/internal/platform/postgres"
	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

// PostgresStore persists registry state in PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(store ports.LedgerStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := s.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(&postgresTx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
		}
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

const symbolColumns = `address, symbol, mint, owner, registered_at, expires_at, deposit`

func scanSymbol(row interface{ Scan(...any) error }) (*models.SymbolRecord, error) {
	var (
		rec     models.SymbolRecord
		deposit postgres.Uint64
	)
	if err := row.Scan(&rec.Address, &rec.Symbol, &rec.Mint, &rec.Owner, &rec.RegisteredAt, &rec.ExpiresAt, &deposit); err != nil {
		return nil, err
	}
	rec.Deposit = uint64(deposit)
	rec.RegisteredAt = rec.RegisteredAt.UTC()
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	return &rec, nil
}

func (s *PostgresStore) querySymbols(ctx context.Context, query string, args ...any) ([]*models.SymbolRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var out []*models.SymbolRecord
	for rows.Next() {
		rec, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.SymbolRecord, error) {
	return s.querySymbols(ctx, `
		SELECT `+symbolColumns+`
		FROM symbols
		WHERE expires_at < $1
		ORDER BY expires_at, symbol
		LIMIT $2`, cutoff, limit)
}

func (s *PostgresStore) ListSymbols(ctx context.Context, after string, limit int) ([]*models.SymbolRecord, error) {
	return s.querySymbols(ctx, `
		SELECT `+symbolColumns+`
		FROM symbols
		WHERE symbol > $1
		ORDER BY symbol
		LIMIT $2`, after, limit)
}

func (s *PostgresStore) Pending(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, event_type, COALESCE(symbol, ''), payload, created_at
		FROM registry_outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox: %w", err)
	}
	defer rows.Close()

	var out []models.OutboxEntry
	for rows.Next() {
		var e models.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Seq, &e.Type, &e.Symbol, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE registry_outbox SET published_at = $2
		WHERE id = ANY($1::uuid[])`, pq.Array(raw), at); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// postgresTx is the LedgerStore view over one SQL transaction.
type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) Config(ctx context.Context) (*models.Config, error) {
	var (
		cfg               models.Config
		phase             int16
		basePrice, reward postgres.Uint64
		annual, updateFee int32
		protocolPriceFeed postgres.NullAddress
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT admin, fee_collector, paused, phase, base_price_usd_micro, annual_increase_bps,
		       update_fee_bps, keeper_reward, native_price_feed, protocol_price_feed,
		       launched_at, updated_at
		FROM registry_config
		WHERE address = $1`, models.ConfigAddress,
	).Scan(&cfg.Admin, &cfg.FeeCollector, &cfg.Paused, &phase, &basePrice, &annual,
		&updateFee, &reward, &cfg.NativePriceFeed, &protocolPriceFeed,
		&cfg.LaunchedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find config: %w", err)
	}
	cfg.Phase = models.Phase(phase)
	cfg.BasePriceUSDMicro = uint64(basePrice)
	cfg.AnnualIncreaseBps = uint16(annual)
	cfg.UpdateFeeBps = uint16(updateFee)
	cfg.KeeperReward = uint64(reward)
	cfg.ProtocolPriceFeed = protocolPriceFeed.Ptr()
	cfg.LaunchedAt = cfg.LaunchedAt.UTC()
	cfg.UpdatedAt = cfg.UpdatedAt.UTC()
	return &cfg, nil
}

func (t *postgresTx) CreateConfig(ctx context.Context, cfg *models.Config) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO registry_config (address, admin, fee_collector, paused, phase, base_price_usd_micro,
		                             annual_increase_bps, update_fee_bps, keeper_reward, native_price_feed,
		                             protocol_price_feed, launched_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (address) DO NOTHING`,
		models.ConfigAddress, cfg.Admin, cfg.FeeCollector, cfg.Paused, int16(cfg.Phase),
		postgres.Uint64(cfg.BasePriceUSDMicro), int32(cfg.AnnualIncreaseBps), int32(cfg.UpdateFeeBps),
		postgres.Uint64(cfg.KeeperReward), cfg.NativePriceFeed, postgres.NullAddressFrom(cfg.ProtocolPriceFeed),
		cfg.LaunchedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (t *postgresTx) SaveConfig(ctx context.Context, cfg *models.Config) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE registry_config SET
			admin = $2, fee_collector = $3, paused = $4, phase = $5, base_price_usd_micro = $6,
			annual_increase_bps = $7, update_fee_bps = $8, keeper_reward = $9,
			native_price_feed = $10, protocol_price_feed = $11, updated_at = $12
		WHERE address = $1`,
		models.ConfigAddress, cfg.Admin, cfg.FeeCollector, cfg.Paused, int16(cfg.Phase),
		postgres.Uint64(cfg.BasePriceUSDMicro), int32(cfg.AnnualIncreaseBps), int32(cfg.UpdateFeeBps),
		postgres.Uint64(cfg.KeeperReward), cfg.NativePriceFeed, postgres.NullAddressFrom(cfg.ProtocolPriceFeed),
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// FindSymbol locks the row for the rest of the transaction.
func (t *postgresTx) FindSymbol(ctx context.Context, symbol string) (*models.SymbolRecord, error) {
	rec, err := scanSymbol(t.tx.QueryRowContext(ctx, `
		SELECT `+symbolColumns+`
		FROM symbols
		WHERE address = $1
		FOR UPDATE`, models.SymbolAddress(symbol)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find symbol: %w", err)
	}
	return rec, nil
}

func (t *postgresTx) FindSymbols(ctx context.Context, symbols []string) ([]*models.SymbolRecord, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+symbolColumns+`
		FROM symbols
		WHERE symbol = ANY($1::text[])
		ORDER BY symbol`, pq.Array(symbols))
	if err != nil {
		return nil, fmt.Errorf("find symbols: %w", err)
	}
	defer rows.Close()

	var out []*models.SymbolRecord
	for rows.Next() {
		rec, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return out, nil
}

// CreateSymbol inserts only if no row holds the record address.
func (t *postgresTx) CreateSymbol(ctx context.Context, rec *models.SymbolRecord) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO symbols (`+symbolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO NOTHING`,
		rec.Address, rec.Symbol, rec.Mint, rec.Owner, rec.RegisteredAt, rec.ExpiresAt, postgres.Uint64(rec.Deposit),
	)
	if err != nil {
		return fmt.Errorf("create symbol: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (t *postgresTx) SaveSymbol(ctx context.Context, rec *models.SymbolRecord) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE symbols SET mint = $2, owner = $3, registered_at = $4, expires_at = $5, deposit = $6
		WHERE address = $1`,
		rec.Address, rec.Mint, rec.Owner, rec.RegisteredAt, rec.ExpiresAt, postgres.Uint64(rec.Deposit),
	)
	if err != nil {
		return fmt.Errorf("save symbol: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (t *postgresTx) DeleteSymbol(ctx context.Context, symbol string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM symbols WHERE address = $1`, models.SymbolAddress(symbol))
	if err != nil {
		return fmt.Errorf("delete symbol: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (t *postgresTx) Balance(ctx context.Context, account domain.Address, currency models.PaymentMethod) (uint64, error) {
	var amount postgres.Uint64
	err := t.tx.QueryRowContext(ctx, `
		SELECT amount FROM balances WHERE account = $1 AND currency = $2`,
		account, string(currency),
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("find balance: %w", err)
	}
	return uint64(amount), nil
}

func (t *postgresTx) Debit(ctx context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	if amount == 0 {
		return nil
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE balances SET amount = amount - $3::numeric
		WHERE account = $1 AND currency = $2 AND amount >= $3::numeric`,
		account, string(currency), postgres.Uint64(amount),
	)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrInsufficient
	}
	return nil
}

func (t *postgresTx) Credit(ctx context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO balances (account, currency, amount)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (account, currency) DO UPDATE SET amount = balances.amount + EXCLUDED.amount`,
		account, string(currency), postgres.Uint64(amount),
	); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// AppendEvent writes the event to the outbox in the same transaction as the
// state change it describes.
func (t *postgresTx) AppendEvent(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	var symbol sql.NullString
	if ev.Symbol != "" {
		symbol = sql.NullString{String: ev.Symbol, Valid: true}
	}
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO registry_outbox (id, event_type, symbol, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), string(ev.Type), symbol, payload, ev.OccurredAt,
	); err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}
