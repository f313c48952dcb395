package handler

import (
	"time"

	"tns/internal/registry/models"
	"tns/internal/registry/pricing"
	"tns/internal/registry/service"
	"tns/pkg/domain"
)

type symbolResponse struct {
	Symbol       string         `json:"symbol"`
	Address      domain.Address `json:"address"`
	Mint         domain.Address `json:"mint"`
	Owner        domain.Address `json:"owner"`
	RegisteredAt time.Time      `json:"registered_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	GraceEndsAt  time.Time      `json:"grace_ends_at"`
	Deposit      uint64         `json:"deposit"`
	State        models.State   `json:"state,omitempty"`
}

func toSymbolResponse(rec *models.SymbolRecord, state models.State) symbolResponse {
	return symbolResponse{
		Symbol:       rec.Symbol,
		Address:      rec.Address,
		Mint:         rec.Mint,
		Owner:        rec.Owner,
		RegisteredAt: rec.RegisteredAt,
		ExpiresAt:    rec.ExpiresAt,
		GraceEndsAt:  rec.GraceEndsAt(),
		Deposit:      rec.Deposit,
		State:        state,
	}
}

type chargeResponse struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Total         uint64               `json:"total"`
	PlatformFee   uint64               `json:"platform_fee"`
}

type paidResponse struct {
	Record symbolResponse `json:"record"`
	Charge chargeResponse `json:"charge"`
}

func toPaidResponse(res *service.RegisterResult) paidResponse {
	return paidResponse{
		Record: toSymbolResponse(res.Record, ""),
		Charge: chargeResponse{
			PaymentMethod: res.Charge.Method,
			Total:         res.Charge.Total,
			PlatformFee:   res.Charge.PlatformFee,
		},
	}
}

type closeResponse struct {
	Symbol         string `json:"symbol"`
	Reward         uint64 `json:"reward"`
	MetadataSymbol string `json:"metadata_symbol,omitempty"`
}

func toCloseResponse(res *service.CloseResult) closeResponse {
	return closeResponse{
		Symbol:         res.Record.Symbol,
		Reward:         res.Reward,
		MetadataSymbol: res.MetadataSymbol,
	}
}

type claimResponse struct {
	Record    symbolResponse   `json:"record"`
	ClaimType models.ClaimType `json:"claim_type"`
}

type configResponse struct {
	Admin             domain.Address  `json:"admin"`
	FeeCollector      domain.Address  `json:"fee_collector"`
	Paused            bool            `json:"paused"`
	Phase             models.Phase    `json:"phase"`
	BasePriceUSDMicro uint64          `json:"base_price_usd_micro"`
	AnnualIncreaseBps uint16          `json:"annual_increase_bps"`
	UpdateFeeBps      uint16          `json:"update_fee_bps"`
	KeeperReward      uint64          `json:"keeper_reward"`
	NativePriceFeed   domain.Address  `json:"native_price_feed"`
	ProtocolPriceFeed *domain.Address `json:"protocol_price_feed,omitempty"`
	LaunchedAt        time.Time       `json:"launched_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toConfigResponse(cfg *models.Config) configResponse {
	return configResponse{
		Admin:             cfg.Admin,
		FeeCollector:      cfg.FeeCollector,
		Paused:            cfg.Paused,
		Phase:             cfg.Phase,
		BasePriceUSDMicro: cfg.BasePriceUSDMicro,
		AnnualIncreaseBps: cfg.AnnualIncreaseBps,
		UpdateFeeBps:      cfg.UpdateFeeBps,
		KeeperReward:      cfg.KeeperReward,
		NativePriceFeed:   cfg.NativePriceFeed,
		ProtocolPriceFeed: cfg.ProtocolPriceFeed,
		LaunchedAt:        cfg.LaunchedAt,
		UpdatedAt:         cfg.UpdatedAt,
	}
}

type quoteResponse struct {
	Operation     pricing.Operation    `json:"operation"`
	Years         uint8                `json:"years,omitempty"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	USDMicro      uint64               `json:"usd_micro"`
	Amount        uint64               `json:"amount"`
}
