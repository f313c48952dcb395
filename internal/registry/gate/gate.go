// Package gate decides who may perform which mutation given the registry's
// phase, pause flag and admin.
package gate

import (
	"fmt"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// Gate is consulted once per mutating operation.
type Gate struct {
	reserved *ReservedList
}

func New(reserved *ReservedList) *Gate {
	return &Gate{reserved: reserved}
}

// RequireActive fails Paused for fee-bearing mutations.
func RequireActive(cfg *models.Config) error {
	if cfg.Paused {
		return models.ErrPaused()
	}
	return nil
}

// RequireAdmin fails Unauthorized unless caller is the admin.
func RequireAdmin(cfg *models.Config, caller domain.Address) error {
	if !cfg.IsAdmin(caller) {
		return models.ErrUnauthorized("caller is not the registry admin")
	}
	return nil
}

// CheckRegistration applies the phase rules to a registration of symbol by caller.
func (g *Gate) CheckRegistration(cfg *models.Config, caller domain.Address, symbol string) error {
	switch cfg.Phase {
	case models.PhaseBootstrap:
		if !cfg.IsAdmin(caller) {
			return dErrors.New(models.CodeAdminOnlyRegistration, "registration is admin-only during bootstrap")
		}
	case models.PhaseOpen:
		if index, reserved := g.reserved.Lookup(symbol); reserved && !cfg.IsAdmin(caller) {
			return dErrors.New(models.CodeSymbolReserved,
				fmt.Sprintf("symbol %q is reserved by %s until the full phase", symbol, index))
		}
	case models.PhaseFull:
	default:
		return dErrors.New(models.CodeInvalidPhase, fmt.Sprintf("unknown phase %d", cfg.Phase))
	}
	return nil
}
