package service

import (
	"context"
	"errors"

	"tns/internal/registry/gate"
	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
	"tns/pkg/requestcontext"
)

// InitializeRequest creates the config singleton. The signer becomes admin.
type InitializeRequest struct {
	FeeCollector      domain.Address
	NativePriceFeed   domain.Address
	ProtocolPriceFeed *domain.Address
}

// Initialize creates the registry config once. It starts paused in the
// bootstrap phase.
func (s *Service) Initialize(ctx context.Context, req InitializeRequest) (cfg *models.Config, err error) {
	ctx, done := s.observe(ctx, "initialize")
	defer func() { done(err) }()

	admin, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.FeeCollector.IsZero() {
		return nil, dErrors.New(models.CodeInvalidOwner, "fee collector cannot be the system address")
	}
	if req.NativePriceFeed.IsZero() {
		return nil, dErrors.New(models.CodeInvalidPriceFeed, "native price feed is required")
	}

	now := requestcontext.Now(ctx)
	cfg = models.NewConfig(admin, req.FeeCollector, req.NativePriceFeed, req.ProtocolPriceFeed, now)
	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		if err := store.CreateConfig(ctx, cfg); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(models.CodeAlreadyInUse, "registry is already initialized")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create config")
		}
		paused := cfg.Paused
		return appendEvent(ctx, store, models.Event{
			Type:   models.EventProtocolInitialized,
			Actor:  admin,
			Owner:  models.AddrPtr(req.FeeCollector),
			Phase:  cfg.Phase,
			Paused: &paused,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registry initialized",
		"admin", admin.String(),
		"fee_collector", req.FeeCollector.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return cfg, nil
}

// UpdateConfig applies an admin update. Handing the admin role to another
// key requires that key to co-sign the request.
func (s *Service) UpdateConfig(ctx context.Context, u models.ConfigUpdate) (cfg *models.Config, err error) {
	ctx, done := s.observe(ctx, "update_config")
	defer func() { done(err) }()

	signer, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		current, err := loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if err := gate.RequireAdmin(current, signer); err != nil {
			return err
		}
		if u.NewAdmin != nil && *u.NewAdmin != current.Admin && !requestcontext.HasSigned(ctx, *u.NewAdmin) {
			return models.ErrUnauthorized("incoming admin must co-sign the transfer")
		}
		if err := current.Apply(u, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := store.SaveConfig(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save config")
		}
		paused := current.Paused
		ev := models.Event{
			Type:   models.EventConfigUpdated,
			Actor:  signer,
			Phase:  current.Phase,
			Paused: &paused,
		}
		if u.NewAdmin != nil {
			ev.Owner = models.AddrPtr(current.Admin)
			ev.PreviousOwner = models.AddrPtr(signer)
		}
		if err := appendEvent(ctx, store, ev); err != nil {
			return err
		}
		cfg = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registry config updated",
		"admin", cfg.Admin.String(),
		"phase", cfg.Phase.String(),
		"paused", cfg.Paused,
		"request_id", requestcontext.RequestID(ctx),
	)
	return cfg, nil
}

// Config returns the current config.
func (s *Service) Config(ctx context.Context) (cfg *models.Config, err error) {
	err = s.ledger.RunInTx(ctx, func(store ports.LedgerStore) error {
		cfg, err = loadConfig(ctx, store)
		return err
	})
	return cfg, err
}
