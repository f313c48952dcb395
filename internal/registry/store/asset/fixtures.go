package asset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tns/internal/registry/models"
	"tns/pkg/domain"
)

// ClassicMint registers a TokenProgram asset with a linked metadata record
// and returns the metadata account to pass to the registry.
func (s *InMemoryStore) ClassicMint(mint domain.Address, symbol string, mintAuthority, updateAuthority *domain.Address, supply uint64) domain.Address {
	s.PutAsset(models.Asset{
		Mint:          mint,
		Program:       models.TokenProgram,
		MintAuthority: mintAuthority,
		Supply:        supply,
		Decimals:      6,
	})
	addr := models.LinkedMetadataAddress(mint)
	s.PutLinkedMetadata(models.Metadata{
		Address:         addr,
		Mint:            mint,
		UpdateAuthority: updateAuthority,
		Symbol:          symbol,
	})
	return addr
}

// EmbeddedMint registers a Token2022Program asset carrying inline metadata.
// The metadata account for such assets is the mint itself.
func (s *InMemoryStore) EmbeddedMint(mint domain.Address, symbol string, mintAuthority, updateAuthority *domain.Address, supply uint64) domain.Address {
	s.PutAsset(models.Asset{
		Mint:          mint,
		Program:       models.Token2022Program,
		MintAuthority: mintAuthority,
		Supply:        supply,
		Decimals:      9,
		Embedded: &models.Metadata{
			Address:         mint,
			Mint:            mint,
			UpdateAuthority: updateAuthority,
			Symbol:          symbol,
		},
	})
	return mint
}

type fixtureFile struct {
	Assets []fixture `yaml:"assets"`
}

type fixture struct {
	Mint            domain.Address  `yaml:"mint"`
	Symbol          string          `yaml:"symbol"`
	Program         string          `yaml:"program"`
	MintAuthority   *domain.Address `yaml:"mint_authority"`
	UpdateAuthority *domain.Address `yaml:"update_authority"`
	Supply          uint64          `yaml:"supply"`
}

// LoadFixtures seeds the mirror from a YAML asset list and returns the
// number of assets loaded. Programs are "token" (linked metadata) or
// "token-2022" (embedded metadata).
func (s *InMemoryStore) LoadFixtures(data []byte) (int, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse asset fixtures: %w", err)
	}
	for i, a := range f.Assets {
		if a.Mint.IsZero() {
			return 0, fmt.Errorf("asset fixture %d: mint is required", i)
		}
		switch a.Program {
		case "", "token":
			s.ClassicMint(a.Mint, a.Symbol, a.MintAuthority, a.UpdateAuthority, a.Supply)
		case "token-2022":
			s.EmbeddedMint(a.Mint, a.Symbol, a.MintAuthority, a.UpdateAuthority, a.Supply)
		default:
			return 0, fmt.Errorf("asset fixture %d: unknown program %q", i, a.Program)
		}
	}
	return len(f.Assets), nil
}

// LoadFixturesFile reads path into the mirror. An empty path loads nothing.
func (s *InMemoryStore) LoadFixturesFile(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read asset fixtures: %w", err)
	}
	return s.LoadFixtures(data)
}
