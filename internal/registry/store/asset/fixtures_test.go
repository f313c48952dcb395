package asset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tns/internal/registry/models"
	"tns/pkg/domain"
)

func TestLoadFixtures(t *testing.T) {
	ctx := context.Background()
	bonk := domain.DeriveAddress("mint", []byte("BONK"))
	pyth := domain.DeriveAddress("mint", []byte("PYTH"))
	owner := domain.DeriveAddress("test", []byte("owner"))

	doc := fmt.Sprintf(`
assets:
  - mint: %s
    symbol: BONK
    update_authority: %s
    supply: 1000
  - mint: %s
    symbol: PYTH
    program: token-2022
    mint_authority: %s
    supply: 50
`, bonk, owner, pyth, owner)

	t.Run("loads linked and embedded assets", func(t *testing.T) {
		store := NewInMemory()
		n, err := store.LoadFixtures([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		md, err := store.LinkedMetadata(ctx, models.LinkedMetadataAddress(bonk))
		require.NoError(t, err)
		assert.Equal(t, "BONK", md.Symbol)
		require.NotNil(t, md.UpdateAuthority)
		assert.Equal(t, owner, *md.UpdateAuthority)

		a, err := store.Asset(ctx, pyth)
		require.NoError(t, err)
		assert.Equal(t, models.Token2022Program, a.Program)
		require.NotNil(t, a.Embedded)
		assert.Equal(t, "PYTH", a.Embedded.Symbol)
		assert.Equal(t, uint64(50), a.Supply)
	})

	t.Run("reads from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "assets.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		n, err := NewInMemory().LoadFixturesFile(path)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("empty path loads nothing", func(t *testing.T) {
		n, err := NewInMemory().LoadFixturesFile("")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("rejects bad documents", func(t *testing.T) {
		tests := map[string]string{
			"missing mint":    "assets:\n  - symbol: X\n",
			"unknown program": fmt.Sprintf("assets:\n  - mint: %s\n    program: nft\n", bonk),
			"bad address":     "assets:\n  - mint: 0OIl\n",
			"not yaml":        "assets: [",
		}
		for name, doc := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := NewInMemory().LoadFixtures([]byte(doc))
				assert.Error(t, err)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewInMemory().LoadFixturesFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "read asset fixtures")
	})
}
