package oracle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// microDecimals is the exponent of micro-USD fixed point.
const microDecimals = 6

// Quote is one asset/USD price observation: Price × 10^Exponent USD per unit.
type Quote struct {
	Feed        domain.Address `json:"feed"`
	Price       int64          `json:"price"`
	Exponent    int32          `json:"expo"`
	Confidence  uint64         `json:"conf"`
	PublishedAt time.Time      `json:"publish_time"`
}

// Verify checks the quote belongs to feed, is positive and no older than
// MaxPriceStaleness at now. A quote dated after now is stale too.
func (q *Quote) Verify(feed domain.Address, now time.Time) error {
	if q.Feed != feed {
		return dErrors.New(models.CodePriceFeedMismatch,
			fmt.Sprintf("quote feed %s does not match configured feed %s", q.Feed, feed))
	}
	if q.Price <= 0 {
		return dErrors.New(models.CodeInvalidPriceFeed, "quote price must be positive")
	}
	if q.PublishedAt.After(now) {
		return dErrors.New(models.CodeStalePriceFeed, "quote is published in the future")
	}
	if age := now.Sub(q.PublishedAt); age > models.MaxPriceStaleness {
		return dErrors.New(models.CodeStalePriceFeed,
			fmt.Sprintf("quote is %s old, limit %s", age.Truncate(time.Second), models.MaxPriceStaleness))
	}
	return nil
}

// MicroUSD normalises the price to micro-USD per whole unit, truncating.
func (q *Quote) MicroUSD() (uint64, error) {
	micro := decimal.New(q.Price, q.Exponent).Shift(microDecimals).Truncate(0)
	if !micro.IsPositive() {
		return 0, dErrors.New(models.CodeInvalidPriceFeed, "quote rounds to zero micro-USD")
	}
	if !micro.BigInt().IsUint64() {
		return 0, dErrors.New(models.CodeInvalidPriceFeed, "quote overflows micro-USD range")
	}
	return micro.BigInt().Uint64(), nil
}

// ConvertUSD turns a micro-USD amount into subunits of a currency with the
// given decimals, priced at priceMicro micro-USD per whole unit.
func ConvertUSD(usdMicro, priceMicro uint64, decimals int32) (uint64, error) {
	if priceMicro == 0 {
		return 0, dErrors.New(models.CodeInvalidPriceFeed, "price must be positive")
	}
	amount, _ := decimal.NewFromUint64(usdMicro).
		Shift(decimals).
		QuoRem(decimal.NewFromUint64(priceMicro), 0)
	if !amount.BigInt().IsUint64() {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "converted amount overflows")
	}
	return amount.BigInt().Uint64(), nil
}
