package models

import (
	"fmt"

	dErrors "tns/pkg/domain-errors"
)

// PaymentMethod selects the settlement currency for a fee-bearing call.
type PaymentMethod string

const (
	PaymentNative   PaymentMethod = "native"
	PaymentUSDC     PaymentMethod = "usdc"
	PaymentUSDT     PaymentMethod = "usdt"
	PaymentProtocol PaymentMethod = "tns"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentNative, PaymentUSDC, PaymentUSDT, PaymentProtocol:
		return m, nil
	case "":
		return PaymentNative, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown payment method %q", s))
	}
}

// Decimals is the subunit precision of the method's currency.
func (m PaymentMethod) Decimals() int32 {
	if m == PaymentNative {
		return 9
	}
	return 6
}

// IsStable reports whether the currency is pegged 1:1 to USD.
func (m PaymentMethod) IsStable() bool {
	return m == PaymentUSDC || m == PaymentUSDT
}

// Charge is a priced fee ready for settlement.
type Charge struct {
	Method       PaymentMethod
	Total        uint64
	PlatformFee  uint64
	CollectorFee uint64
}

// SplitPlatformFee divides total between a platform and the fee collector.
func SplitPlatformFee(method PaymentMethod, total uint64, platformFeeBps uint16) (Charge, error) {
	if platformFeeBps > MaxPlatformFeeBps {
		return Charge{}, dErrors.New(CodePlatformFeeExceedsMax,
			fmt.Sprintf("platform fee %d bps exceeds %d", platformFeeBps, MaxPlatformFeeBps))
	}
	platform := total * uint64(platformFeeBps) / BpsDenominator
	return Charge{
		Method:       method,
		Total:        total,
		PlatformFee:  platform,
		CollectorFee: total - platform,
	}, nil
}
