// Package pricing computes registry fees in USD and converts them to the
// payer's settlement currency.
package pricing

import (
	"fmt"
	"time"

	"tns/internal/registry/models"
	"tns/internal/registry/oracle"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// Operation selects which fee schedule applies.
type Operation string

const (
	OpRegister    Operation = "register"
	OpRenew       Operation = "renew"
	OpUpdateAsset Operation = "update_asset"
)

func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpRegister, OpRenew, OpUpdateAsset:
		return op, nil
	case "":
		return OpRegister, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown operation %q", s))
	}
}

// Cost is a priced operation.
type Cost struct {
	USDMicro uint64
	Amount   uint64
	Method   models.PaymentMethod
}

// AnnualPrice compounds the base price once per full year since launch,
// capped at MaxCompoundingYears.
func AnnualPrice(cfg *models.Config, now time.Time) uint64 {
	elapsed := now.Sub(cfg.LaunchedAt)
	if elapsed <= 0 {
		return cfg.BasePriceUSDMicro
	}
	years := min(int64(elapsed/models.Year), models.MaxCompoundingYears)

	price := cfg.BasePriceUSDMicro
	for range years {
		price = price * (models.BpsDenominator + uint64(cfg.AnnualIncreaseBps)) / models.BpsDenominator
	}
	return price
}

// RegistrationUSD prices a lease of years with the multi-year discount.
func RegistrationUSD(cfg *models.Config, years uint8, now time.Time) (uint64, error) {
	if err := models.ValidateYears(years); err != nil {
		return 0, err
	}
	total := AnnualPrice(cfg, now) * uint64(years)
	discount := total * models.MultiYearDiscountBps[years-1] / models.BpsDenominator
	return total - discount, nil
}

// UpdateFeeUSD is the configured fraction of the current annual price.
func UpdateFeeUSD(cfg *models.Config, now time.Time) uint64 {
	return AnnualPrice(cfg, now) * uint64(cfg.UpdateFeeBps) / models.BpsDenominator
}

// ApplyPaymentDiscount gives the protocol token its preferential rate.
func ApplyPaymentDiscount(usdMicro uint64, method models.PaymentMethod) uint64 {
	if method != models.PaymentProtocol {
		return usdMicro
	}
	return usdMicro * (models.BpsDenominator - models.ProtocolTokenDiscountBps) / models.BpsDenominator
}

// USDCost prices op before currency conversion.
func USDCost(cfg *models.Config, op Operation, years uint8, method models.PaymentMethod, now time.Time) (uint64, error) {
	var usd uint64
	switch op {
	case OpRegister, OpRenew:
		var err error
		if usd, err = RegistrationUSD(cfg, years, now); err != nil {
			return 0, err
		}
	case OpUpdateAsset:
		usd = UpdateFeeUSD(cfg, now)
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown operation %q", op))
	}
	return ApplyPaymentDiscount(usd, method), nil
}

// Convert turns micro-USD into subunits of the method's currency.
//
// Stablecoins settle 1:1. The native currency always needs a quote for the
// configured native feed. The protocol token uses a quote for its feed when
// one is configured and otherwise holds a one-dollar peg.
func Convert(cfg *models.Config, usdMicro uint64, method models.PaymentMethod, q *oracle.Quote, now time.Time) (uint64, error) {
	switch {
	case method.IsStable():
		return usdMicro, nil
	case method == models.PaymentNative:
		return convertQuoted(usdMicro, method, q, cfg.NativePriceFeed, now)
	case method == models.PaymentProtocol:
		if cfg.ProtocolPriceFeed == nil {
			return usdMicro, nil
		}
		return convertQuoted(usdMicro, method, q, *cfg.ProtocolPriceFeed, now)
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown payment method %q", method))
	}
}

func convertQuoted(usdMicro uint64, method models.PaymentMethod, q *oracle.Quote, feed domain.Address, now time.Time) (uint64, error) {
	if q == nil {
		return 0, dErrors.New(models.CodeInvalidPriceFeed, fmt.Sprintf("%s payment requires a price quote", method))
	}
	if err := q.Verify(feed, now); err != nil {
		return 0, err
	}
	priceMicro, err := q.MicroUSD()
	if err != nil {
		return 0, err
	}
	return oracle.ConvertUSD(usdMicro, priceMicro, method.Decimals())
}

// Price computes the full cost of op and enforces the caller's ceiling.
func Price(cfg *models.Config, op Operation, years uint8, method models.PaymentMethod, q *oracle.Quote, maxCost uint64, now time.Time) (Cost, error) {
	usd, err := USDCost(cfg, op, years, method, now)
	if err != nil {
		return Cost{}, err
	}
	amount, err := Convert(cfg, usd, method, q, now)
	if err != nil {
		return Cost{}, err
	}
	if amount > maxCost {
		return Cost{}, models.ErrSlippage(amount, maxCost)
	}
	return Cost{USDMicro: usd, Amount: amount, Method: method}, nil
}

// Quote computes the cost of op without a slippage ceiling.
func Quote(cfg *models.Config, op Operation, years uint8, method models.PaymentMethod, q *oracle.Quote, now time.Time) (Cost, error) {
	return Price(cfg, op, years, method, q, ^uint64(0), now)
}
