package models

import (
	"fmt"
	"time"

	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// Phase is the rollout stage governing who may register.
type Phase uint8

const (
	PhaseBootstrap Phase = 1 // admin only
	PhaseOpen      Phase = 2 // anyone, reserved tickers excluded
	PhaseFull      Phase = 3 // anyone, anything
)

func ParsePhase(v uint8) (Phase, error) {
	p := Phase(v)
	if !p.Valid() {
		return 0, dErrors.New(CodeInvalidPhase, fmt.Sprintf("phase %d is outside 1..3", v))
	}
	return p, nil
}

func (p Phase) Valid() bool {
	return p >= PhaseBootstrap && p <= PhaseFull
}

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseOpen:
		return "open"
	case PhaseFull:
		return "full"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// ConfigAddress is the deterministic location of the singleton config.
var ConfigAddress = domain.DeriveAddress(NamespaceConfig)

// Config holds the registry's governance parameters.
type Config struct {
	Admin             domain.Address
	FeeCollector      domain.Address
	Paused            bool
	Phase             Phase
	BasePriceUSDMicro uint64
	AnnualIncreaseBps uint16
	UpdateFeeBps      uint16
	KeeperReward      uint64
	NativePriceFeed   domain.Address
	ProtocolPriceFeed *domain.Address
	LaunchedAt        time.Time
	UpdatedAt         time.Time
}

// IsAdmin reports whether addr is the configured admin.
func (c *Config) IsAdmin(addr domain.Address) bool {
	return !addr.IsZero() && c.Admin == addr
}

// NewConfig builds the initial config: paused, bootstrap phase, default pricing.
func NewConfig(admin, feeCollector, nativeFeed domain.Address, protocolFeed *domain.Address, now time.Time) *Config {
	return &Config{
		Admin:             admin,
		FeeCollector:      feeCollector,
		Paused:            true,
		Phase:             PhaseBootstrap,
		BasePriceUSDMicro: BasePriceUSDMicro,
		AnnualIncreaseBps: AnnualIncreaseBps,
		UpdateFeeBps:      UpdateFeeBps,
		KeeperReward:      DefaultKeeperReward,
		NativePriceFeed:   nativeFeed,
		ProtocolPriceFeed: protocolFeed,
		LaunchedAt:        now,
		UpdatedAt:         now,
	}
}

// ConfigUpdate carries the optional fields of an update_config call.
type ConfigUpdate struct {
	NewAdmin          *domain.Address
	FeeCollector      *domain.Address
	Paused            *bool
	Phase             *Phase
	ProtocolPriceFeed *domain.Address
	KeeperReward      *uint64
}

// Apply validates and applies u to c. Phase must strictly increase.
func (c *Config) Apply(u ConfigUpdate, now time.Time) error {
	if u.Phase != nil {
		if !u.Phase.Valid() || *u.Phase <= c.Phase {
			return dErrors.New(CodeInvalidPhase,
				fmt.Sprintf("phase must advance from %d and stay within 1..3, got %d", c.Phase, *u.Phase))
		}
	}
	if u.NewAdmin != nil && u.NewAdmin.IsZero() {
		return dErrors.New(CodeInvalidOwner, "admin cannot be the system address")
	}
	if u.FeeCollector != nil && u.FeeCollector.IsZero() {
		return dErrors.New(CodeInvalidOwner, "fee collector cannot be the system address")
	}

	if u.NewAdmin != nil {
		c.Admin = *u.NewAdmin
	}
	if u.FeeCollector != nil {
		c.FeeCollector = *u.FeeCollector
	}
	if u.Paused != nil {
		c.Paused = *u.Paused
	}
	if u.Phase != nil {
		c.Phase = *u.Phase
	}
	if u.ProtocolPriceFeed != nil {
		feed := *u.ProtocolPriceFeed
		c.ProtocolPriceFeed = &feed
	}
	if u.KeeperReward != nil {
		c.KeeperReward = *u.KeeperReward
	}
	c.UpdatedAt = now
	return nil
}
