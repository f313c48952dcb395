package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tns/internal/registry/gate"
	"tns/internal/registry/models"
	"tns/internal/registry/oracle"
	"tns/internal/registry/ports"
	"tns/internal/registry/pricing"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
	"tns/pkg/requestcontext"
)

// RegisterRequest registers symbol for mint. MetadataAccount is where the
// mint's metadata lives: the mint itself for token-2022 assets, the linked
// record otherwise.
type RegisterRequest struct {
	Symbol          string
	Mint            domain.Address
	MetadataAccount domain.Address
	Years           uint8
	Payment         Payment
}

// RegisterResult is the created record and what was charged for it.
type RegisterResult struct {
	Record *models.SymbolRecord
	Charge models.Charge
}

func (r RegisterRequest) validate() error {
	if err := models.ValidateSymbol(r.Symbol); err != nil {
		return err
	}
	if err := models.ValidateYears(r.Years); err != nil {
		return err
	}
	return r.Payment.validate()
}

// Register creates a record owned by the signer. Concurrent registrations
// of one symbol race on record creation and exactly one succeeds.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (res *RegisterResult, err error) {
	ctx, done := s.observe(ctx, "register", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	registrant, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	err = s.withQuote(ctx, req.Payment.PriceQuote, func(q *oracle.Quote) error {
		return s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
			cfg, err := loadConfig(ctx, store)
			if err != nil {
				return err
			}
			if err := gate.RequireActive(cfg); err != nil {
				return err
			}
			if err := s.gate.CheckRegistration(cfg, registrant, req.Symbol); err != nil {
				return err
			}
			if err := req.validate(); err != nil {
				return err
			}
			if _, err := store.FindSymbol(ctx, req.Symbol); err == nil {
				return dErrors.New(models.CodeAlreadyInUse, fmt.Sprintf("symbol %q is already registered", req.Symbol))
			} else if !errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load symbol")
			}
			if _, err := s.enforcer.Check(ctx, req.Symbol, req.Mint, req.MetadataAccount); err != nil {
				return err
			}

			cost, err := pricing.Price(cfg, pricing.OpRegister, req.Years, req.Payment.Method, q, req.Payment.MaxCost, now)
			if err != nil {
				return err
			}
			charge, err := settle(ctx, store, cfg, registrant, req.Payment, cost.Amount)
			if err != nil {
				return err
			}
			if err := debit(ctx, store, registrant, models.PaymentNative, cfg.KeeperReward); err != nil {
				return err
			}

			rec := &models.SymbolRecord{
				Address:      models.SymbolAddress(req.Symbol),
				Symbol:       req.Symbol,
				Mint:         req.Mint,
				Owner:        registrant,
				RegisteredAt: now,
				ExpiresAt:    now.Add(models.LeaseLength(req.Years)),
				Deposit:      cfg.KeeperReward,
			}
			if err := createSymbol(ctx, store, rec); err != nil {
				return err
			}
			if err := appendEvent(ctx, store, models.Event{
				Type:          models.EventSymbolRegistered,
				Symbol:        rec.Symbol,
				Actor:         registrant,
				Mint:          models.AddrPtr(rec.Mint),
				Owner:         models.AddrPtr(rec.Owner),
				ExpiresAt:     &rec.ExpiresAt,
				Years:         req.Years,
				PaymentMethod: charge.Method,
				Cost:          charge.Total,
				PlatformFee:   charge.PlatformFee,
			}); err != nil {
				return err
			}
			res = &RegisterResult{Record: rec, Charge: charge}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddFees(string(res.Charge.Method), res.Charge.Total)
	s.logger.InfoContext(ctx, "symbol registered",
		"symbol", req.Symbol,
		"owner", registrant.String(),
		"years", req.Years,
		"payment_method", string(res.Charge.Method),
		"cost", res.Charge.Total,
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// ClaimExpired hands an abandoned record to a new registrant. The record
// keeps its storage deposit and the new lease counts from now.
func (s *Service) ClaimExpired(ctx context.Context, req RegisterRequest) (res *RegisterResult, err error) {
	ctx, done := s.observe(ctx, "claim_expired", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	registrant, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	err = s.withQuote(ctx, req.Payment.PriceQuote, func(q *oracle.Quote) error {
		return s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
			cfg, err := loadConfig(ctx, store)
			if err != nil {
				return err
			}
			if err := gate.RequireActive(cfg); err != nil {
				return err
			}
			if err := s.gate.CheckRegistration(cfg, registrant, req.Symbol); err != nil {
				return err
			}
			if err := req.validate(); err != nil {
				return err
			}
			rec, err := loadSymbol(ctx, store, req.Symbol)
			if err != nil {
				return err
			}
			if !rec.IsAbandoned(now) {
				return dErrors.New(models.CodeSymbolNotExpired,
					fmt.Sprintf("symbol %q is %s until %s", req.Symbol, rec.StateAt(now), rec.GraceEndsAt().Format(time.RFC3339)))
			}
			if _, err := s.enforcer.Check(ctx, req.Symbol, req.Mint, req.MetadataAccount); err != nil {
				return err
			}

			cost, err := pricing.Price(cfg, pricing.OpRegister, req.Years, req.Payment.Method, q, req.Payment.MaxCost, now)
			if err != nil {
				return err
			}
			charge, err := settle(ctx, store, cfg, registrant, req.Payment, cost.Amount)
			if err != nil {
				return err
			}

			previousOwner, previousMint := rec.Owner, rec.Mint
			rec.Owner = registrant
			rec.Mint = req.Mint
			rec.RegisteredAt = now
			rec.ExpiresAt = now.Add(models.LeaseLength(req.Years))
			if err := saveSymbol(ctx, store, rec); err != nil {
				return err
			}
			if err := appendEvent(ctx, store, models.Event{
				Type:          models.EventSymbolClaimed,
				Symbol:        rec.Symbol,
				Actor:         registrant,
				Mint:          models.AddrPtr(rec.Mint),
				PreviousMint:  models.AddrPtr(previousMint),
				Owner:         models.AddrPtr(rec.Owner),
				PreviousOwner: models.AddrPtr(previousOwner),
				ExpiresAt:     &rec.ExpiresAt,
				Years:         req.Years,
				PaymentMethod: charge.Method,
				Cost:          charge.Total,
				PlatformFee:   charge.PlatformFee,
			}); err != nil {
				return err
			}
			res = &RegisterResult{Record: rec, Charge: charge}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddFees(string(res.Charge.Method), res.Charge.Total)
	s.logger.InfoContext(ctx, "abandoned symbol claimed",
		"symbol", req.Symbol,
		"owner", registrant.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// SeedRequest is an admin registration on behalf of Owner.
type SeedRequest struct {
	Symbol          string
	Mint            domain.Address
	MetadataAccount domain.Address
	Owner           domain.Address
	Years           uint8
}

// Seed lets the admin place a record without a fee, in any phase and while
// paused. The admin funds the storage deposit.
func (s *Service) Seed(ctx context.Context, req SeedRequest) (rec *models.SymbolRecord, err error) {
	ctx, done := s.observe(ctx, "seed", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	admin, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		cfg, err := loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if err := gate.RequireAdmin(cfg, admin); err != nil {
			return err
		}
		if err := models.ValidateSymbol(req.Symbol); err != nil {
			return err
		}
		if err := models.ValidateYears(req.Years); err != nil {
			return err
		}
		if req.Owner.IsZero() {
			return dErrors.New(models.CodeInvalidOwner, "owner cannot be the system address")
		}
		if _, err := s.enforcer.Check(ctx, req.Symbol, req.Mint, req.MetadataAccount); err != nil {
			return err
		}
		if err := debit(ctx, store, admin, models.PaymentNative, cfg.KeeperReward); err != nil {
			return err
		}

		rec = &models.SymbolRecord{
			Address:      models.SymbolAddress(req.Symbol),
			Symbol:       req.Symbol,
			Mint:         req.Mint,
			Owner:        req.Owner,
			RegisteredAt: now,
			ExpiresAt:    now.Add(models.LeaseLength(req.Years)),
			Deposit:      cfg.KeeperReward,
		}
		if err := createSymbol(ctx, store, rec); err != nil {
			return err
		}
		return appendEvent(ctx, store, models.Event{
			Type:      models.EventSymbolSeeded,
			Symbol:    rec.Symbol,
			Actor:     admin,
			Mint:      models.AddrPtr(rec.Mint),
			Owner:     models.AddrPtr(rec.Owner),
			ExpiresAt: &rec.ExpiresAt,
			Years:     req.Years,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "symbol seeded",
		"symbol", req.Symbol,
		"owner", req.Owner.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return rec, nil
}

// RenewRequest extends a record's lease. Anyone may pay for any symbol.
type RenewRequest struct {
	Symbol  string
	Years   uint8
	Payment Payment
}

// Renew extends expires_at from the current expiry, so renewing during grace
// loses no time. Abandoned records cannot be renewed.
func (s *Service) Renew(ctx context.Context, req RenewRequest) (res *RegisterResult, err error) {
	ctx, done := s.observe(ctx, "renew", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	payer, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	err = s.withQuote(ctx, req.Payment.PriceQuote, func(q *oracle.Quote) error {
		return s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
			cfg, err := loadConfig(ctx, store)
			if err != nil {
				return err
			}
			if err := gate.RequireActive(cfg); err != nil {
				return err
			}
			if err := models.ValidateYears(req.Years); err != nil {
				return err
			}
			if err := req.Payment.validate(); err != nil {
				return err
			}
			rec, err := loadSymbol(ctx, store, req.Symbol)
			if err != nil {
				return err
			}
			if rec.IsAbandoned(now) {
				return dErrors.New(models.CodeSymbolExpired, fmt.Sprintf("symbol %q is past its grace period", req.Symbol))
			}
			if err := rec.Renew(req.Years, now); err != nil {
				return err
			}

			cost, err := pricing.Price(cfg, pricing.OpRenew, req.Years, req.Payment.Method, q, req.Payment.MaxCost, now)
			if err != nil {
				return err
			}
			charge, err := settle(ctx, store, cfg, payer, req.Payment, cost.Amount)
			if err != nil {
				return err
			}
			if err := saveSymbol(ctx, store, rec); err != nil {
				return err
			}
			if err := appendEvent(ctx, store, models.Event{
				Type:          models.EventSymbolRenewed,
				Symbol:        rec.Symbol,
				Actor:         payer,
				Owner:         models.AddrPtr(rec.Owner),
				ExpiresAt:     &rec.ExpiresAt,
				Years:         req.Years,
				PaymentMethod: charge.Method,
				Cost:          charge.Total,
				PlatformFee:   charge.PlatformFee,
			}); err != nil {
				return err
			}
			res = &RegisterResult{Record: rec, Charge: charge}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddFees(string(res.Charge.Method), res.Charge.Total)
	s.logger.InfoContext(ctx, "symbol renewed",
		"symbol", req.Symbol,
		"payer", payer.String(),
		"expires_at", res.Record.ExpiresAt,
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// UpdateAssetRequest points a record at a new mint.
type UpdateAssetRequest struct {
	Symbol          string
	Mint            domain.Address
	MetadataAccount domain.Address
	Payment         Payment
}

// UpdateAsset is owner-only and charges the update fee. The new mint's
// metadata must carry the record's symbol.
func (s *Service) UpdateAsset(ctx context.Context, req UpdateAssetRequest) (res *RegisterResult, err error) {
	ctx, done := s.observe(ctx, "update_asset", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	owner, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	err = s.withQuote(ctx, req.Payment.PriceQuote, func(q *oracle.Quote) error {
		return s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
			cfg, err := loadConfig(ctx, store)
			if err != nil {
				return err
			}
			if err := gate.RequireActive(cfg); err != nil {
				return err
			}
			if err := req.Payment.validate(); err != nil {
				return err
			}
			rec, err := loadSymbol(ctx, store, req.Symbol)
			if err != nil {
				return err
			}
			if rec.Owner != owner {
				return models.ErrUnauthorized("only the owner may update the asset")
			}
			if rec.IsAbandoned(now) {
				return dErrors.New(models.CodeCannotUpdateExpiredSymbol,
					fmt.Sprintf("symbol %q is past its grace period", req.Symbol))
			}
			if rec.Mint == req.Mint {
				return dErrors.New(models.CodeSameMint, "record already points at this mint")
			}
			if _, err := s.enforcer.Check(ctx, rec.Symbol, req.Mint, req.MetadataAccount); err != nil {
				return err
			}

			cost, err := pricing.Price(cfg, pricing.OpUpdateAsset, 0, req.Payment.Method, q, req.Payment.MaxCost, now)
			if err != nil {
				return err
			}
			charge, err := settle(ctx, store, cfg, owner, req.Payment, cost.Amount)
			if err != nil {
				return err
			}

			previousMint := rec.Mint
			rec.Mint = req.Mint
			if err := saveSymbol(ctx, store, rec); err != nil {
				return err
			}
			if err := appendEvent(ctx, store, models.Event{
				Type:          models.EventMintUpdated,
				Symbol:        rec.Symbol,
				Actor:         owner,
				Mint:          models.AddrPtr(rec.Mint),
				PreviousMint:  models.AddrPtr(previousMint),
				PaymentMethod: charge.Method,
				Cost:          charge.Total,
				PlatformFee:   charge.PlatformFee,
			}); err != nil {
				return err
			}
			res = &RegisterResult{Record: rec, Charge: charge}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddFees(string(res.Charge.Method), res.Charge.Total)
	s.logger.InfoContext(ctx, "symbol mint updated",
		"symbol", req.Symbol,
		"mint", req.Mint.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return res, nil
}

// QuoteRequest prices an operation without executing it.
type QuoteRequest struct {
	Operation  pricing.Operation
	Years      uint8
	Method     models.PaymentMethod
	PriceQuote string
}

// Quote returns the current cost of an operation.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (cost pricing.Cost, err error) {
	now := requestcontext.Now(ctx)
	err = s.withQuote(ctx, req.PriceQuote, func(q *oracle.Quote) error {
		return s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
			cfg, err := loadConfig(ctx, store)
			if err != nil {
				return err
			}
			cost, err = pricing.Quote(cfg, req.Operation, req.Years, req.Method, q, now)
			return err
		})
	})
	return cost, err
}

// Lookup is a record with its lifecycle state at request time.
type Lookup struct {
	Record *models.SymbolRecord
	State  models.State
}

// Lookup reads one record.
func (s *Service) Lookup(ctx context.Context, symbol string) (*Lookup, error) {
	if err := models.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	var out *Lookup
	err := s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		rec, err := loadSymbol(ctx, store, symbol)
		if err != nil {
			return err
		}
		out = &Lookup{Record: rec, State: rec.StateAt(requestcontext.Now(ctx))}
		return nil
	})
	return out, err
}

// LookupMany reads the records that exist among symbols.
// Symbols that could never be registered are skipped.
func (s *Service) LookupMany(ctx context.Context, symbols []string) ([]Lookup, error) {
	valid := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if models.ValidateSymbol(symbol) == nil {
			valid = append(valid, symbol)
		}
	}
	var out []Lookup
	err := s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		recs, err := store.FindSymbols(ctx, valid)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load symbols")
		}
		now := requestcontext.Now(ctx)
		for _, rec := range recs {
			out = append(out, Lookup{Record: rec, State: rec.StateAt(now)})
		}
		return nil
	})
	return out, err
}
