//go:build integration

package asset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	"tns/pkg/platform/sentinel"
	"tns/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	store := NewPostgres(pg.DB)

	authority := domain.DeriveAddress("test", []byte("authority"))
	classic := domain.DeriveAddress("mint", []byte("BONK"))
	embedded := domain.DeriveAddress("mint", []byte("PYTH"))

	t.Run("classic asset with linked metadata", func(t *testing.T) {
		require.NoError(t, store.UpsertAsset(ctx, models.Asset{
			Mint:          classic,
			Program:       models.TokenProgram,
			MintAuthority: &authority,
			Supply:        1_000_000,
			Decimals:      5,
		}))
		account := models.LinkedMetadataAddress(classic)
		require.NoError(t, store.UpsertLinkedMetadata(ctx, models.Metadata{
			Address: account, Mint: classic, Symbol: "BONK", Name: "Bonk",
		}))

		a, err := store.Asset(ctx, classic)
		require.NoError(t, err)
		assert.Equal(t, models.TokenProgram, a.Program)
		assert.Equal(t, uint64(1_000_000), a.Supply)
		require.NotNil(t, a.MintAuthority)
		assert.Equal(t, authority, *a.MintAuthority)
		assert.Nil(t, a.Embedded)

		md, err := store.LinkedMetadata(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, "BONK", md.Symbol)
		assert.Nil(t, md.UpdateAuthority)
	})

	t.Run("embedded metadata round trips", func(t *testing.T) {
		require.NoError(t, store.UpsertAsset(ctx, models.Asset{
			Mint:     embedded,
			Program:  models.Token2022Program,
			Supply:   42,
			Decimals: 9,
			Embedded: &models.Metadata{Address: embedded, Mint: embedded, UpdateAuthority: &authority, Symbol: "PYTH"},
		}))
		a, err := store.Asset(ctx, embedded)
		require.NoError(t, err)
		require.NotNil(t, a.Embedded)
		assert.Equal(t, "PYTH", a.Embedded.Symbol)
		assert.Equal(t, authority, *a.Embedded.UpdateAuthority)
		assert.Nil(t, a.MintAuthority)
	})

	t.Run("holding", func(t *testing.T) {
		addr := domain.DeriveAddress("holding", []byte("alice"))
		require.NoError(t, store.UpsertHolding(ctx, models.Holding{Address: addr, Owner: authority, Mint: classic, Amount: 600_000}))
		h, err := store.Holding(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, uint64(600_000), h.Amount)
		assert.Equal(t, classic, h.Mint)
	})

	t.Run("unknown rows are not found", func(t *testing.T) {
		missing := domain.DeriveAddress("mint", []byte("NOPE"))
		_, err := store.Asset(ctx, missing)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = store.LinkedMetadata(ctx, missing)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = store.Holding(ctx, missing)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
