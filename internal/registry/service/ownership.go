package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
	"tns/pkg/requestcontext"
)

// Transfer hands the record to newOwner. Owner-only, free and not gated by
// pause. The system address is rejected rather than treated as a burn.
func (s *Service) Transfer(ctx context.Context, symbol string, newOwner domain.Address) (rec *models.SymbolRecord, err error) {
	ctx, done := s.observe(ctx, "transfer", attribute.String("symbol", symbol))
	defer func() { done(err) }()

	owner, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if newOwner.IsZero() {
		return nil, dErrors.New(models.CodeInvalidOwner, "new owner cannot be the system address")
	}

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		if _, err := loadConfig(ctx, store); err != nil {
			return err
		}
		rec, err = loadSymbol(ctx, store, symbol)
		if err != nil {
			return err
		}
		if rec.Owner != owner {
			return models.ErrUnauthorized("only the owner may transfer the symbol")
		}
		if rec.Owner == newOwner {
			return dErrors.New(models.CodeSameOwner, "new owner is the current owner")
		}
		previous := rec.Owner
		rec.Owner = newOwner
		if err := saveSymbol(ctx, store, rec); err != nil {
			return err
		}
		return appendEvent(ctx, store, models.Event{
			Type:          models.EventOwnershipTransferred,
			Symbol:        rec.Symbol,
			Actor:         owner,
			Owner:         models.AddrPtr(newOwner),
			PreviousOwner: models.AddrPtr(previous),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "symbol ownership transferred",
		"symbol", symbol,
		"from", owner.String(),
		"to", newOwner.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return rec, nil
}

// ClaimRequest carries the accounts a claimant proves authority with.
// Holding is optional and only consulted for the majority-holder path.
type ClaimRequest struct {
	Symbol          string
	MetadataAccount domain.Address
	Holding         *domain.Address
}

// Claim reassigns the record to a caller proven authoritative over its
// asset. Paths are tried in order: metadata update authority, mint
// authority, then a strict majority of supply.
func (s *Service) Claim(ctx context.Context, req ClaimRequest) (rec *models.SymbolRecord, claimType models.ClaimType, err error) {
	ctx, done := s.observe(ctx, "claim", attribute.String("symbol", req.Symbol))
	defer func() { done(err) }()

	claimant, err := caller(ctx)
	if err != nil {
		return nil, "", err
	}

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		if _, err := loadConfig(ctx, store); err != nil {
			return err
		}
		rec, err = loadSymbol(ctx, store, req.Symbol)
		if err != nil {
			return err
		}
		if rec.Owner == claimant {
			return dErrors.New(models.CodeAlreadyOwner, "caller already owns the symbol")
		}

		claimType, err = s.resolveClaim(ctx, claimant, rec.Mint, req)
		if err != nil {
			return err
		}

		previous := rec.Owner
		rec.Owner = claimant
		if err := saveSymbol(ctx, store, rec); err != nil {
			return err
		}
		return appendEvent(ctx, store, models.Event{
			Type:          models.EventOwnershipClaimed,
			Symbol:        rec.Symbol,
			Actor:         claimant,
			Owner:         models.AddrPtr(claimant),
			PreviousOwner: models.AddrPtr(previous),
			ClaimType:     claimType,
		})
	})
	if err != nil {
		return nil, "", err
	}

	s.metrics.IncClaim(string(claimType))
	s.logger.InfoContext(ctx, "symbol ownership claimed",
		"symbol", req.Symbol,
		"claimant", claimant.String(),
		"claim_type", string(claimType),
		"request_id", requestcontext.RequestID(ctx),
	)
	return rec, claimType, nil
}

func (s *Service) resolveClaim(ctx context.Context, claimant, mint domain.Address, req ClaimRequest) (models.ClaimType, error) {
	resolved, err := s.enforcer.Resolve(ctx, mint, req.MetadataAccount)
	if err != nil {
		return "", err
	}

	if ua := resolved.Metadata.UpdateAuthority; ua != nil && *ua == claimant {
		return models.ClaimUpdateAuthority, nil
	}
	if ma := resolved.Asset.MintAuthority; ma != nil && *ma == claimant {
		return models.ClaimMintAuthority, nil
	}
	if req.Holding != nil {
		majority, err := s.holdsMajority(ctx, claimant, resolved.Asset, *req.Holding)
		if err != nil {
			return "", err
		}
		if majority {
			return models.ClaimMajorityHolder, nil
		}
	}
	return "", dErrors.New(models.CodeNotTokenAuthority, "caller has no authority over the asset")
}

// holdsMajority reports whether the claimant's holding is strictly more than
// half of supply. Exactly half is not enough.
func (s *Service) holdsMajority(ctx context.Context, claimant domain.Address, asset *models.Asset, holdingAddr domain.Address) (bool, error) {
	holding, err := s.assets.Holding(ctx, holdingAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read holding")
	}
	if holding.Owner != claimant || holding.Mint != asset.Mint {
		return false, nil
	}
	if asset.Supply == 0 {
		return false, nil
	}
	return holding.Amount > asset.Supply/2, nil
}
