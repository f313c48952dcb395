package models

import "time"

// Protocol limits and pricing defaults.
const (
	MaxSymbolLength = 10
	MaxYears        = 10

	SecondsPerYear     int64 = 31_557_600
	GracePeriodSeconds int64 = 7_776_000

	BasePriceUSDMicro   uint64 = 10_000_000
	AnnualIncreaseBps   uint16 = 700
	UpdateFeeBps        uint16 = 5000
	DefaultKeeperReward uint64 = 10_000_000

	ProtocolTokenDiscountBps uint64 = 2500
	MaxPlatformFeeBps        uint16 = 1000
	BpsDenominator           uint64 = 10_000

	// MaxCompoundingYears caps the escalation loop.
	MaxCompoundingYears = 50
)

const (
	Year              = time.Duration(SecondsPerYear) * time.Second
	GracePeriod       = time.Duration(GracePeriodSeconds) * time.Second
	MaxPriceStaleness = time.Hour
)

// MultiYearDiscountBps is indexed by years-1.
var MultiYearDiscountBps = [MaxYears]uint64{0, 500, 800, 1100, 1400, 1600, 1800, 2000, 2200, 2500}

// Address derivation namespaces.
const (
	NamespaceToken    = "token"
	NamespaceConfig   = "config"
	NamespaceMetadata = "metadata"
)
