// Package ports declares the external collaborators the registry reads from.
package ports

import (
	"context"

	"tns/internal/registry/models"
	"tns/pkg/domain"
)

// AssetSource reads asset descriptors from the host ledger. Missing accounts
// return sentinel.ErrNotFound.
//
//go:generate mockgen -source=assets.go -destination=mocks/assets_mock.go -package=mocks
type AssetSource interface {
	Asset(ctx context.Context, mint domain.Address) (*models.Asset, error)
	LinkedMetadata(ctx context.Context, addr domain.Address) (*models.Metadata, error)
	Holding(ctx context.Context, addr domain.Address) (*models.Holding, error)
}
