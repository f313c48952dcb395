// Package seed bulk-loads the audited genesis mapping of symbols to assets.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"tns/internal/registry/metadata"
	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/internal/registry/service"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
)

// Entry is one line of the genesis mapping.
type Entry struct {
	Symbol string         `yaml:"symbol"`
	Mint   domain.Address `yaml:"mint"`
	Owner  domain.Address `yaml:"owner"`
	Years  uint8          `yaml:"years"`
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

// Parse decodes a genesis file. Years defaults to 1 and duplicate symbols
// are rejected so a bad merge fails before anything is written.
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Entries))
	for i := range f.Entries {
		e := &f.Entries[i]
		if e.Years == 0 {
			e.Years = 1
		}
		if _, dup := seen[e.Symbol]; dup {
			return nil, fmt.Errorf("seed file lists %q twice", e.Symbol)
		}
		seen[e.Symbol] = struct{}{}
	}
	return f.Entries, nil
}

func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Seeder is the registry operation the loader drives.
type Seeder interface {
	Seed(ctx context.Context, req service.SeedRequest) (*models.SymbolRecord, error)
}

// Result lists what happened to each entry.
type Result struct {
	Seeded  []string
	Skipped []string
	Failed  map[string]error
}

// Loader seeds entries one transaction at a time, so a failure leaves the
// entries before it in place and a rerun skips them.
type Loader struct {
	seeder Seeder
	assets ports.AssetSource
	logger *slog.Logger
}

func NewLoader(seeder Seeder, assets ports.AssetSource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{seeder: seeder, assets: assets, logger: logger}
}

// Apply seeds every entry as the admin signing ctx. It stops early only when
// ctx is done or the caller is not the admin.
func (l *Loader) Apply(ctx context.Context, entries []Entry) (*Result, error) {
	res := &Result{Failed: make(map[string]error)}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := l.seed(ctx, e)
		switch {
		case err == nil:
			res.Seeded = append(res.Seeded, e.Symbol)
		case dErrors.HasCode(err, models.CodeAlreadyInUse):
			res.Skipped = append(res.Skipped, e.Symbol)
		case dErrors.HasCode(err, models.CodeUnauthorized), dErrors.HasCode(err, dErrors.CodeNotFound):
			return res, err
		default:
			res.Failed[e.Symbol] = err
			l.logger.WarnContext(ctx, "seed entry failed", "symbol", e.Symbol, "error", err)
		}
	}
	l.logger.InfoContext(ctx, "seed file applied",
		"seeded", len(res.Seeded),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
	)
	return res, nil
}

func (l *Loader) seed(ctx context.Context, e Entry) error {
	asset, err := l.assets.Asset(ctx, e.Mint)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(models.CodeInvalidMint, fmt.Sprintf("asset %s not found", e.Mint))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read asset")
	}
	_, err = l.seeder.Seed(ctx, service.SeedRequest{
		Symbol:          e.Symbol,
		Mint:            e.Mint,
		MetadataAccount: metadata.MetadataAccountFor(asset),
		Owner:           e.Owner,
		Years:           e.Years,
	})
	return err
}
