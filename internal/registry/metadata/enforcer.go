// Package metadata resolves an asset's metadata and checks that it agrees with
// a registry symbol.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
)

// Enforcer locates metadata by the asset's owning program and compares symbols.
type Enforcer struct {
	assets ports.AssetSource
}

func New(assets ports.AssetSource) *Enforcer {
	return &Enforcer{assets: assets}
}

// Resolved is an asset together with the metadata found for it.
type Resolved struct {
	Asset    *models.Asset
	Metadata *models.Metadata
}

// Resolve reads the metadata for mint from account. Token-2022 assets keep
// metadata on the mint itself, so account must equal mint. Classic assets keep
// it in the linked record, so account must be that derived address.
func (e *Enforcer) Resolve(ctx context.Context, mint, account domain.Address) (*Resolved, error) {
	asset, err := e.assets.Asset(ctx, mint)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(models.CodeInvalidMint, fmt.Sprintf("asset %s not found", mint))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read asset")
	}

	switch asset.Program {
	case models.Token2022Program:
		if account != mint {
			return nil, dErrors.New(models.CodeInvalidMetadata, "token-2022 metadata must be read from the mint")
		}
		if asset.Embedded == nil {
			return nil, dErrors.New(models.CodeInvalidMetadata, "mint carries no embedded metadata")
		}
		md := *asset.Embedded
		md.Address = mint
		md.Mint = mint
		return &Resolved{Asset: asset, Metadata: &md}, nil

	case models.TokenProgram:
		if account == mint || account != models.LinkedMetadataAddress(mint) {
			return nil, dErrors.New(models.CodeInvalidMetadata, "metadata account is not the linked record for this mint")
		}
		md, err := e.assets.LinkedMetadata(ctx, account)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(models.CodeInvalidMetadata, "linked metadata record not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read linked metadata")
		}
		if md.Mint != mint {
			return nil, dErrors.New(models.CodeInvalidMetadata, "linked metadata belongs to another mint")
		}
		out := *md
		out.Symbol = strings.Trim(out.Symbol, "\x00")
		return &Resolved{Asset: asset, Metadata: &out}, nil

	default:
		return nil, dErrors.New(models.CodeInvalidMint, "asset is not owned by a token program")
	}
}

// Check resolves the metadata and requires a byte-exact symbol match.
func (e *Enforcer) Check(ctx context.Context, symbol string, mint, account domain.Address) (*Resolved, error) {
	r, err := e.Resolve(ctx, mint, account)
	if err != nil {
		return nil, err
	}
	if r.Metadata.Symbol != symbol {
		return nil, dErrors.New(models.CodeMetadataSymbolMismatch,
			fmt.Sprintf("asset metadata symbol %q does not match %q", r.Metadata.Symbol, symbol))
	}
	return r, nil
}

// Drift re-reads the record's asset metadata and reports the current symbol
// and whether it has diverged from the record.
func (e *Enforcer) Drift(ctx context.Context, rec *models.SymbolRecord, account domain.Address) (string, bool, error) {
	r, err := e.Resolve(ctx, rec.Mint, account)
	if err != nil {
		return "", false, err
	}
	return r.Metadata.Symbol, r.Metadata.Symbol != rec.Symbol, nil
}

// MetadataAccountFor returns the account a caller should pass for mint.
func MetadataAccountFor(asset *models.Asset) domain.Address {
	if asset.Program == models.Token2022Program {
		return asset.Mint
	}
	return models.LinkedMetadataAddress(asset.Mint)
}
