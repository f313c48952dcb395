package handler

import (
	"time"

	"tns/internal/registry/models"
	"tns/internal/registry/service"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

type paymentRequest struct {
	PaymentMethod  string          `json:"payment_method"`
	MaxCost        uint64          `json:"max_cost"`
	PlatformFeeBps uint16          `json:"platform_fee_bps"`
	Platform       *domain.Address `json:"platform,omitempty"`
	PriceQuote     string          `json:"price_quote,omitempty"`
}

func (p paymentRequest) toPayment() (service.Payment, error) {
	method, err := models.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return service.Payment{}, err
	}
	if p.MaxCost == 0 {
		return service.Payment{}, dErrors.New(dErrors.CodeBadRequest, "max_cost is required")
	}
	return service.Payment{
		Method:         method,
		MaxCost:        p.MaxCost,
		PlatformFeeBps: p.PlatformFeeBps,
		Platform:       p.Platform,
		PriceQuote:     p.PriceQuote,
	}, nil
}

type initializeRequest struct {
	FeeCollector      domain.Address  `json:"fee_collector"`
	NativePriceFeed   domain.Address  `json:"native_price_feed"`
	ProtocolPriceFeed *domain.Address `json:"protocol_price_feed,omitempty"`
}

type updateConfigRequest struct {
	NewAdmin          *domain.Address `json:"new_admin,omitempty"`
	FeeCollector      *domain.Address `json:"fee_collector,omitempty"`
	Paused            *bool           `json:"paused,omitempty"`
	Phase             *uint8          `json:"phase,omitempty"`
	ProtocolPriceFeed *domain.Address `json:"protocol_price_feed,omitempty"`
	KeeperReward      *uint64         `json:"keeper_reward,omitempty"`
}

func (r updateConfigRequest) toUpdate() (models.ConfigUpdate, error) {
	u := models.ConfigUpdate{
		NewAdmin:          r.NewAdmin,
		FeeCollector:      r.FeeCollector,
		Paused:            r.Paused,
		ProtocolPriceFeed: r.ProtocolPriceFeed,
		KeeperReward:      r.KeeperReward,
	}
	if r.Phase != nil {
		phase, err := models.ParsePhase(*r.Phase)
		if err != nil {
			return models.ConfigUpdate{}, err
		}
		u.Phase = &phase
	}
	return u, nil
}

type registerRequest struct {
	Symbol          string         `json:"symbol"`
	Mint            domain.Address `json:"mint"`
	MetadataAccount domain.Address `json:"metadata_account"`
	Years           int64          `json:"years"`
	paymentRequest
}

// takeoverRequest is a registration of the symbol in the path.
type takeoverRequest struct {
	Mint            domain.Address `json:"mint"`
	MetadataAccount domain.Address `json:"metadata_account"`
	Years           int64          `json:"years"`
	paymentRequest
}

type seedRequest struct {
	Symbol          string         `json:"symbol"`
	Mint            domain.Address `json:"mint"`
	MetadataAccount domain.Address `json:"metadata_account"`
	Owner           domain.Address `json:"owner"`
	Years           int64          `json:"years"`
}

type renewRequest struct {
	Years int64 `json:"years"`
	paymentRequest
}

type updateAssetRequest struct {
	Mint            domain.Address `json:"mint"`
	MetadataAccount domain.Address `json:"metadata_account"`
	paymentRequest
}

type transferRequest struct {
	NewOwner domain.Address `json:"new_owner"`
}

type claimRequest struct {
	MetadataAccount domain.Address  `json:"metadata_account"`
	Holding         *domain.Address `json:"holding,omitempty"`
}

type verifyRequest struct {
	MetadataAccount domain.Address `json:"metadata_account"`
}

type adminUpdateRequest struct {
	NewOwner  *domain.Address `json:"new_owner,omitempty"`
	NewMint   *domain.Address `json:"new_mint,omitempty"`
	NewExpiry *time.Time      `json:"new_expiry,omitempty"`
}
