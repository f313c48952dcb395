package asset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tns/internal/platform/postgres"
	"tns/internal/registry/models"
	"tns/pkg/domain"
	"tns/pkg/platform/sentinel"
)

// PostgresStore reads the asset mirror tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Asset(ctx context.Context, mint domain.Address) (*models.Asset, error) {
	var (
		a               models.Asset
		mintAuthority   postgres.NullAddress
		supply          postgres.Uint64
		updateAuthority postgres.NullAddress
		name, sym, uri  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT mint, program, mint_authority, supply, decimals,
		       md_update_authority, md_name, md_symbol, md_uri
		FROM assets
		WHERE mint = $1`, mint,
	).Scan(&a.Mint, &a.Program, &mintAuthority, &supply, &a.Decimals,
		&updateAuthority, &name, &sym, &uri)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	a.MintAuthority = mintAuthority.Ptr()
	a.Supply = uint64(supply)
	if sym.Valid {
		a.Embedded = &models.Metadata{
			Address:         a.Mint,
			Mint:            a.Mint,
			UpdateAuthority: updateAuthority.Ptr(),
			Name:            name.String,
			Symbol:          sym.String,
			URI:             uri.String,
		}
	}
	return &a, nil
}

func (s *PostgresStore) LinkedMetadata(ctx context.Context, addr domain.Address) (*models.Metadata, error) {
	var (
		md              models.Metadata
		updateAuthority postgres.NullAddress
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT address, mint, update_authority, name, symbol, uri
		FROM asset_metadata
		WHERE address = $1`, addr,
	).Scan(&md.Address, &md.Mint, &updateAuthority, &md.Name, &md.Symbol, &md.URI)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find linked metadata: %w", err)
	}
	md.UpdateAuthority = updateAuthority.Ptr()
	return &md, nil
}

func (s *PostgresStore) Holding(ctx context.Context, addr domain.Address) (*models.Holding, error) {
	var (
		h      models.Holding
		amount postgres.Uint64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT address, owner, mint, amount
		FROM asset_holdings
		WHERE address = $1`, addr,
	).Scan(&h.Address, &h.Owner, &h.Mint, &amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find holding: %w", err)
	}
	h.Amount = uint64(amount)
	return &h, nil
}

// UpsertAsset is used by the indexer to keep the mirror current.
func (s *PostgresStore) UpsertAsset(ctx context.Context, a models.Asset) error {
	var (
		updateAuthority postgres.NullAddress
		name, sym, uri  sql.NullString
	)
	if a.Embedded != nil {
		updateAuthority = postgres.NullAddressFrom(a.Embedded.UpdateAuthority)
		name = sql.NullString{String: a.Embedded.Name, Valid: true}
		sym = sql.NullString{String: a.Embedded.Symbol, Valid: true}
		uri = sql.NullString{String: a.Embedded.URI, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (mint, program, mint_authority, supply, decimals,
		                    md_update_authority, md_name, md_symbol, md_uri)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (mint) DO UPDATE SET
			program = EXCLUDED.program,
			mint_authority = EXCLUDED.mint_authority,
			supply = EXCLUDED.supply,
			decimals = EXCLUDED.decimals,
			md_update_authority = EXCLUDED.md_update_authority,
			md_name = EXCLUDED.md_name,
			md_symbol = EXCLUDED.md_symbol,
			md_uri = EXCLUDED.md_uri`,
		a.Mint, a.Program, postgres.NullAddressFrom(a.MintAuthority), postgres.Uint64(a.Supply), int16(a.Decimals),
		updateAuthority, name, sym, uri,
	)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

// UpsertLinkedMetadata stores a linked metadata record.
func (s *PostgresStore) UpsertLinkedMetadata(ctx context.Context, md models.Metadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO asset_metadata (address, mint, update_authority, name, symbol, uri)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			mint = EXCLUDED.mint,
			update_authority = EXCLUDED.update_authority,
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			uri = EXCLUDED.uri`,
		md.Address, md.Mint, postgres.NullAddressFrom(md.UpdateAuthority), md.Name, md.Symbol, md.URI,
	)
	if err != nil {
		return fmt.Errorf("upsert linked metadata: %w", err)
	}
	return nil
}

// UpsertHolding stores a holding account balance.
func (s *PostgresStore) UpsertHolding(ctx context.Context, h models.Holding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO asset_holdings (address, owner, mint, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			owner = EXCLUDED.owner,
			mint = EXCLUDED.mint,
			amount = EXCLUDED.amount`,
		h.Address, h.Owner, h.Mint, postgres.Uint64(h.Amount),
	)
	if err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}
	return nil
}
