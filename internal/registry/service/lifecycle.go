package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tns/internal/registry/gate"
	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/requestcontext"
)

// CloseResult reports a closed record and the deposit paid out for it.
type CloseResult struct {
	Record *models.SymbolRecord
	Reward uint64
	// MetadataSymbol is the drifted symbol found by VerifyOrClose.
	MetadataSymbol string
}

// closeRecord deletes rec and pays its deposit to closer.
func closeRecord(ctx context.Context, store ports.LedgerStore, rec *models.SymbolRecord, closer domain.Address) error {
	if err := deleteSymbol(ctx, store, rec.Symbol); err != nil {
		return err
	}
	return credit(ctx, store, closer, models.PaymentNative, rec.Deposit)
}

// Cancel closes an abandoned record and pays its deposit to the caller.
// Anyone may call it; before abandonment it fails NotYetCancelable.
func (s *Service) Cancel(ctx context.Context, symbol string) (res *CloseResult, err error) {
	ctx, done := s.observe(ctx, "cancel", attribute.String("symbol", symbol))
	defer func() { done(err) }()

	keeper, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		if _, err := loadConfig(ctx, store); err != nil {
			return err
		}
		rec, err := loadSymbol(ctx, store, symbol)
		if err != nil {
			return err
		}
		if !rec.IsAbandoned(now) {
			return dErrors.New(models.CodeNotYetCancelable,
				fmt.Sprintf("symbol %q is %s; cancelable after %s", symbol, rec.StateAt(now), rec.GraceEndsAt().Format(time.RFC3339)))
		}
		if err := closeRecord(ctx, store, rec, keeper); err != nil {
			return err
		}
		if err := appendEvent(ctx, store, models.Event{
			Type:          models.EventSymbolCanceled,
			Symbol:        rec.Symbol,
			Actor:         keeper,
			Mint:          models.AddrPtr(rec.Mint),
			PreviousOwner: models.AddrPtr(rec.Owner),
			Reward:        rec.Deposit,
		}); err != nil {
			return err
		}
		res = &CloseResult{Record: rec, Reward: rec.Deposit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddKeeperReward("cancel", res.Reward)
	s.logger.InfoContext(ctx, "abandoned symbol canceled",
		"symbol", symbol,
		"keeper", keeper.String(),
		"reward", res.Reward,
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// VerifyOrClose re-reads the record's asset metadata. If the symbol still
// matches it fails NoDriftDetected and changes nothing; otherwise the record
// is closed and its deposit paid to the caller.
func (s *Service) VerifyOrClose(ctx context.Context, symbol string, metadataAccount domain.Address) (res *CloseResult, err error) {
	ctx, done := s.observe(ctx, "verify_or_close", attribute.String("symbol", symbol))
	defer func() { done(err) }()

	keeper, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		if _, err := loadConfig(ctx, store); err != nil {
			return err
		}
		rec, err := loadSymbol(ctx, store, symbol)
		if err != nil {
			return err
		}
		current, drifted, err := s.enforcer.Drift(ctx, rec, metadataAccount)
		if err != nil {
			return err
		}
		if !drifted {
			return dErrors.New(models.CodeNoDriftDetected, fmt.Sprintf("asset metadata still reads %q", current))
		}
		if err := closeRecord(ctx, store, rec, keeper); err != nil {
			return err
		}
		if err := appendEvent(ctx, store, models.Event{
			Type:           models.EventSymbolDriftDetected,
			Symbol:         rec.Symbol,
			Actor:          keeper,
			Mint:           models.AddrPtr(rec.Mint),
			PreviousOwner:  models.AddrPtr(rec.Owner),
			MetadataSymbol: current,
			Reward:         rec.Deposit,
		}); err != nil {
			return err
		}
		res = &CloseResult{Record: rec, Reward: rec.Deposit, MetadataSymbol: current}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddKeeperReward("drift", res.Reward)
	s.logger.InfoContext(ctx, "drifted symbol closed",
		"symbol", symbol,
		"metadata_symbol", res.MetadataSymbol,
		"keeper", keeper.String(),
		"reward", res.Reward,
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// AdminUpdateRequest overrides record fields. Nil fields are left alone.
type AdminUpdateRequest struct {
	Symbol    string
	NewOwner  *domain.Address
	NewMint   *domain.Address
	NewExpiry *time.Time
}

// AdminUpdate rewrites a record without metadata or timing checks.
func (s *Service) AdminUpdate(ctx context.Context, req AdminUpdateRequest) (rec *models.SymbolRecord, err error) {
	ctx, done := s.observe(ctx, "admin_update", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	admin, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.NewOwner == nil && req.NewMint == nil && req.NewExpiry == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "nothing to update")
	}
	if req.NewOwner != nil && req.NewOwner.IsZero() {
		return nil, dErrors.New(models.CodeInvalidOwner, "owner cannot be the system address")
	}

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		cfg, err := loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if err := gate.RequireAdmin(cfg, admin); err != nil {
			return err
		}
		rec, err = loadSymbol(ctx, store, req.Symbol)
		if err != nil {
			return err
		}
		ev := models.Event{
			Type:          models.EventSymbolUpdatedByAdmin,
			Symbol:        rec.Symbol,
			Actor:         admin,
			PreviousOwner: models.AddrPtr(rec.Owner),
			PreviousMint:  models.AddrPtr(rec.Mint),
		}
		if req.NewOwner != nil {
			rec.Owner = *req.NewOwner
		}
		if req.NewMint != nil {
			rec.Mint = *req.NewMint
		}
		if req.NewExpiry != nil {
			if req.NewExpiry.Before(rec.RegisteredAt) {
				return dErrors.New(dErrors.CodeValidation, "expiry cannot precede registration")
			}
			rec.ExpiresAt = req.NewExpiry.UTC()
		}
		if err := saveSymbol(ctx, store, rec); err != nil {
			return err
		}
		ev.Owner = models.AddrPtr(rec.Owner)
		ev.Mint = models.AddrPtr(rec.Mint)
		ev.ExpiresAt = &rec.ExpiresAt
		return appendEvent(ctx, store, ev)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "symbol overridden by admin",
		"symbol", req.Symbol,
		"admin", admin.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return rec, nil
}

// AdminClose removes a record unconditionally. The deposit goes to the admin.
func (s *Service) AdminClose(ctx context.Context, symbol string) (res *CloseResult, err error) {
	ctx, done := s.observe(ctx, "admin_close", attribute.String("symbol", symbol))
	defer func() { done(err) }()

	admin, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		cfg, err := loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if err := gate.RequireAdmin(cfg, admin); err != nil {
			return err
		}
		rec, err := loadSymbol(ctx, store, symbol)
		if err != nil {
			return err
		}
		if err := closeRecord(ctx, store, rec, admin); err != nil {
			return err
		}
		if err := appendEvent(ctx, store, models.Event{
			Type:          models.EventSymbolClosedByAdmin,
			Symbol:        rec.Symbol,
			Actor:         admin,
			Mint:          models.AddrPtr(rec.Mint),
			PreviousOwner: models.AddrPtr(rec.Owner),
			Reward:        rec.Deposit,
		}); err != nil {
			return err
		}
		res = &CloseResult{Record: rec, Reward: rec.Deposit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddKeeperReward("admin_close", res.Reward)
	s.logger.WarnContext(ctx, "symbol closed by admin",
		"symbol", symbol,
		"admin", admin.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// Balance reads an account balance, for callers checking their funds.
func (s *Service) Balance(ctx context.Context, account domain.Address, currency models.PaymentMethod) (amount uint64, err error) {
	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		amount, err = store.Balance(ctx, account, currency)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
		}
		return nil
	})
	return amount, err
}

// Fund credits an account directly. Operator tooling only.
func (s *Service) Fund(ctx context.Context, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	if account.IsZero() {
		return dErrors.New(models.CodeInvalidOwner, "cannot fund the system address")
	}
	err := s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		return credit(ctx, store, account, currency, amount)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "account funded",
		"account", account.String(),
		"currency", string(currency),
		"amount", amount,
	)
	return nil
}
