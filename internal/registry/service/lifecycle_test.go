package service

import (
	"context"
	"time"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// =============================================================================
// Renew Tests
// =============================================================================

func (s *ServiceSuite) TestRenew() {
	s.launch(models.PhaseFull)
	rec := s.register(s.alice, "RNW", 1)

	s.Run("anyone may renew and expiry extends from the old expiry", func() {
		res, err := s.service.Renew(s.as(s.bob), RenewRequest{Symbol: "RNW", Years: 2, Payment: s.usdc(1_000_000_000)})
		s.Require().NoError(err)
		s.Equal(rec.ExpiresAt.Add(2*models.Year), res.Record.ExpiresAt)
		s.Equal(s.alice, res.Record.Owner)
		s.Equal(uint64(19_000_000), res.Charge.Total)
		s.Equal(models.EventSymbolRenewed, s.lastEvent().Type)
	})

	s.Run("renewal during grace keeps the original schedule", func() {
		late := s.register(s.alice, "LATE", 1)
		inGrace := late.ExpiresAt.Add(24 * time.Hour)
		res, err := s.service.Renew(s.at(s.alice, inGrace), RenewRequest{Symbol: "LATE", Years: 1, Payment: s.usdc(1_000_000_000)})
		s.Require().NoError(err)
		s.Equal(late.ExpiresAt.Add(models.Year), res.Record.ExpiresAt)
	})

	s.Run("abandoned symbols cannot be renewed", func() {
		gone := s.register(s.alice, "GONE", 1)
		after := gone.GraceEndsAt().Add(time.Second)
		_, err := s.service.Renew(s.at(s.alice, after), RenewRequest{Symbol: "GONE", Years: 1, Payment: s.usdc(1_000_000_000)})
		s.requireCode(err, models.CodeSymbolExpired)
	})

	s.Run("renewal may not reach past ten years from now", func() {
		s.register(s.alice, "MAXD", 10)
		_, err := s.service.Renew(s.as(s.alice), RenewRequest{Symbol: "MAXD", Years: 1, Payment: s.usdc(1_000_000_000)})
		s.requireCode(err, models.CodeExceedsMaxYears)
	})

	s.Run("missing symbol reports not found", func() {
		_, err := s.service.Renew(s.as(s.alice), RenewRequest{Symbol: "NOPE", Years: 1, Payment: s.usdc(1_000_000_000)})
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("paused registry rejects renewal", func() {
		paused := true
		_, err := s.service.UpdateConfig(s.as(s.admin), models.ConfigUpdate{Paused: &paused})
		s.Require().NoError(err)
		_, err = s.service.Renew(s.as(s.alice), RenewRequest{Symbol: "RNW", Years: 1, Payment: s.usdc(1_000_000_000)})
		s.requireCode(err, models.CodePaused)
	})
}

// =============================================================================
// Update Asset Tests
// =============================================================================

func (s *ServiceSuite) TestUpdateAsset() {
	s.launch(models.PhaseFull)
	rec := s.register(s.alice, "MIGR", 1)
	newMint := addr("mint-MIGR-v2")
	newAccount := s.assets.EmbeddedMint(newMint, "MIGR", nil, nil, 5_000)

	s.Run("only the owner may migrate", func() {
		_, err := s.service.UpdateAsset(s.as(s.bob), UpdateAssetRequest{
			Symbol: "MIGR", Mint: newMint, MetadataAccount: newAccount, Payment: s.usdc(1_000_000_000),
		})
		s.requireCode(err, models.CodeUnauthorized)
	})

	s.Run("same mint is rejected", func() {
		_, err := s.service.UpdateAsset(s.as(s.alice), UpdateAssetRequest{
			Symbol: "MIGR", Mint: rec.Mint, MetadataAccount: models.LinkedMetadataAddress(rec.Mint), Payment: s.usdc(1_000_000_000),
		})
		s.requireCode(err, models.CodeSameMint)
	})

	s.Run("new mint must carry the record symbol", func() {
		other := addr("mint-OTHER")
		account := s.assets.EmbeddedMint(other, "OTHER", nil, nil, 1)
		_, err := s.service.UpdateAsset(s.as(s.alice), UpdateAssetRequest{
			Symbol: "MIGR", Mint: other, MetadataAccount: account, Payment: s.usdc(1_000_000_000),
		})
		s.requireCode(err, models.CodeMetadataSymbolMismatch)
	})

	s.Run("owner migrates for half the annual price", func() {
		before := s.balance(s.collector, models.PaymentUSDC)
		res, err := s.service.UpdateAsset(s.as(s.alice), UpdateAssetRequest{
			Symbol: "MIGR", Mint: newMint, MetadataAccount: newAccount, Payment: s.usdc(1_000_000_000),
		})
		s.Require().NoError(err)
		s.Equal(newMint, res.Record.Mint)
		s.Equal(rec.ExpiresAt, res.Record.ExpiresAt)
		s.Equal(before+5_000_000, s.balance(s.collector, models.PaymentUSDC))

		ev := s.lastEvent()
		s.Equal(models.EventMintUpdated, ev.Type)
		s.Equal(rec.Mint, *ev.PreviousMint)
	})

	s.Run("abandoned symbols cannot be migrated", func() {
		after := rec.GraceEndsAt().Add(time.Second)
		mint := addr("mint-MIGR-v3")
		account := s.assets.EmbeddedMint(mint, "MIGR", nil, nil, 1)
		_, err := s.service.UpdateAsset(s.at(s.alice, after), UpdateAssetRequest{
			Symbol: "MIGR", Mint: mint, MetadataAccount: account, Payment: s.usdc(1_000_000_000),
		})
		s.requireCode(err, models.CodeCannotUpdateExpiredSymbol)
	})
}

// =============================================================================
// Cancel Tests
// =============================================================================

func (s *ServiceSuite) TestCancel() {
	s.launch(models.PhaseFull)
	rec := s.register(s.alice, "DEAD", 1)

	s.Run("active and grace records are not cancelable", func() {
		for _, at := range []time.Time{s.now, rec.ExpiresAt.Add(time.Hour), rec.GraceEndsAt()} {
			_, err := s.service.Cancel(s.at(s.keeper, at), "DEAD")
			s.requireCode(err, models.CodeNotYetCancelable)
		}
	})

	s.Run("abandoned record is closed and the deposit paid to the caller", func() {
		after := rec.GraceEndsAt().Add(time.Second)
		res, err := s.service.Cancel(s.at(s.keeper, after), "DEAD")
		s.Require().NoError(err)
		s.Equal(models.DefaultKeeperReward, res.Reward)
		s.Equal(models.DefaultKeeperReward, s.balance(s.keeper, models.PaymentNative))

		_, err = s.lookup("DEAD")
		s.requireCode(err, dErrors.CodeNotFound)

		ev := s.lastEvent()
		s.Equal(models.EventSymbolCanceled, ev.Type)
		s.Equal(s.keeper, ev.Actor)
		s.Equal(models.DefaultKeeperReward, ev.Reward)
	})

	s.Run("canceled symbol can be registered again", func() {
		after := rec.GraceEndsAt().Add(time.Minute)
		res, err := s.service.Register(s.at(s.bob, after), RegisterRequest{
			Symbol: "DEAD", Mint: rec.Mint, MetadataAccount: models.LinkedMetadataAddress(rec.Mint),
			Years: 1, Payment: s.usdc(1_000_000_000),
		})
		s.Require().NoError(err)
		s.Equal(s.bob, res.Record.Owner)
	})

	s.Run("cancel works while paused", func() {
		other := s.register(s.alice, "IDLE", 1)
		paused := true
		_, err := s.service.UpdateConfig(s.as(s.admin), models.ConfigUpdate{Paused: &paused})
		s.Require().NoError(err)

		_, err = s.service.Cancel(s.at(s.keeper, other.GraceEndsAt().Add(time.Second)), "IDLE")
		s.NoError(err)
	})
}

// =============================================================================
// Drift Tests
// =============================================================================

func (s *ServiceSuite) TestVerifyOrClose() {
	s.launch(models.PhaseFull)
	rec := s.register(s.alice, "DRFT", 1)
	account := models.LinkedMetadataAddress(rec.Mint)

	s.Run("matching metadata fails NoDriftDetected", func() {
		_, err := s.service.VerifyOrClose(s.as(s.keeper), "DRFT", account)
		s.requireCode(err, models.CodeNoDriftDetected)

		got, err := s.lookup("DRFT")
		s.Require().NoError(err)
		s.Equal(s.alice, got.Record.Owner)
	})

	s.Run("wrong metadata account is rejected", func() {
		_, err := s.service.VerifyOrClose(s.as(s.keeper), "DRFT", rec.Mint)
		s.requireCode(err, models.CodeInvalidMetadata)
	})

	s.Run("renamed asset closes the record and rewards the caller", func() {
		s.assets.Rename(rec.Mint, "DRIFT")
		res, err := s.service.VerifyOrClose(s.as(s.keeper), "DRFT", account)
		s.Require().NoError(err)
		s.Equal("DRIFT", res.MetadataSymbol)
		s.Equal(models.DefaultKeeperReward, s.balance(s.keeper, models.PaymentNative))

		_, err = s.lookup("DRFT")
		s.requireCode(err, dErrors.CodeNotFound)

		ev := s.lastEvent()
		s.Equal(models.EventSymbolDriftDetected, ev.Type)
		s.Equal("DRIFT", ev.MetadataSymbol)
	})

	s.Run("case change counts as drift", func() {
		cased := s.register(s.alice, "Case", 1)
		s.assets.Rename(cased.Mint, "CASE")
		_, err := s.service.VerifyOrClose(s.as(s.keeper), "Case", models.LinkedMetadataAddress(cased.Mint))
		s.NoError(err)
	})
}

// =============================================================================
// Claim Expired Tests
// =============================================================================

func (s *ServiceSuite) TestClaimExpired() {
	s.launch(models.PhaseFull)
	rec := s.register(s.alice, "OLDIE", 1)
	mint := addr("mint-OLDIE-new")
	account := s.assets.ClassicMint(mint, "OLDIE", nil, nil, 1)
	req := RegisterRequest{Symbol: "OLDIE", Mint: mint, MetadataAccount: account, Years: 2, Payment: s.usdc(1_000_000_000)}

	s.Run("record in grace is not claimable", func() {
		_, err := s.service.ClaimExpired(s.at(s.bob, rec.ExpiresAt.Add(time.Hour)), req)
		s.requireCode(err, models.CodeSymbolNotExpired)
	})

	s.Run("abandoned record moves to the claimant with a fresh lease", func() {
		after := rec.GraceEndsAt().Add(time.Hour)
		res, err := s.service.ClaimExpired(s.at(s.bob, after), req)
		s.Require().NoError(err)
		s.Equal(s.bob, res.Record.Owner)
		s.Equal(mint, res.Record.Mint)
		s.Equal(after.Add(2*models.Year), res.Record.ExpiresAt)
		s.Equal(rec.Deposit, res.Record.Deposit)

		ev := s.lastEvent()
		s.Equal(models.EventSymbolClaimed, ev.Type)
		s.Equal(s.alice, *ev.PreviousOwner)
	})
}

// =============================================================================
// Seed and Admin Override Tests
// =============================================================================

func (s *ServiceSuite) TestSeed() {
	mint := addr("mint-SEED")
	account := s.assets.ClassicMint(mint, "SEED", nil, nil, 1)
	req := SeedRequest{Symbol: "SEED", Mint: mint, MetadataAccount: account, Owner: s.bob, Years: 3}

	s.Run("non admin is rejected", func() {
		_, err := s.service.Seed(s.as(s.alice), req)
		s.requireCode(err, models.CodeUnauthorized)
	})

	s.Run("admin seeds while paused and funds the deposit", func() {
		before := s.balance(s.admin, models.PaymentNative)
		rec, err := s.service.Seed(s.as(s.admin), req)
		s.Require().NoError(err)
		s.Equal(s.bob, rec.Owner)
		s.Equal(s.now.Add(3*models.Year), rec.ExpiresAt)
		s.Equal(before-models.DefaultKeeperReward, s.balance(s.admin, models.PaymentNative))
		s.Equal(uint64(0), s.balance(s.collector, models.PaymentUSDC))
		s.Equal(models.EventSymbolSeeded, s.lastEvent().Type)
	})

	s.Run("seeding a registered symbol fails AlreadyInUse", func() {
		_, err := s.service.Seed(s.as(s.admin), req)
		s.requireCode(err, models.CodeAlreadyInUse)
	})
}

func (s *ServiceSuite) TestAdminUpdate() {
	s.launch(models.PhaseFull)
	rec := s.register(s.alice, "ADM", 1)

	s.Run("non admin is rejected", func() {
		_, err := s.service.AdminUpdate(s.as(s.alice), AdminUpdateRequest{Symbol: "ADM", NewOwner: &s.bob})
		s.requireCode(err, models.CodeUnauthorized)
	})

	s.Run("empty update is rejected", func() {
		_, err := s.service.AdminUpdate(s.as(s.admin), AdminUpdateRequest{Symbol: "ADM"})
		s.requireCode(err, dErrors.CodeBadRequest)
	})

	s.Run("expiry before registration is rejected", func() {
		early := rec.RegisteredAt.Add(-time.Second)
		_, err := s.service.AdminUpdate(s.as(s.admin), AdminUpdateRequest{Symbol: "ADM", NewExpiry: &early})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("admin overrides owner mint and expiry", func() {
		mint := addr("anything")
		expiry := s.now.Add(30 * 24 * time.Hour)
		got, err := s.service.AdminUpdate(s.as(s.admin), AdminUpdateRequest{
			Symbol: "ADM", NewOwner: &s.bob, NewMint: &mint, NewExpiry: &expiry,
		})
		s.Require().NoError(err)
		s.Equal(s.bob, got.Owner)
		s.Equal(mint, got.Mint)
		s.Equal(expiry, got.ExpiresAt)
		s.Equal(models.EventSymbolUpdatedByAdmin, s.lastEvent().Type)
	})
}

func (s *ServiceSuite) TestAdminClose() {
	s.launch(models.PhaseFull)
	s.register(s.alice, "SHUT", 1)

	s.Run("non admin is rejected", func() {
		_, err := s.service.AdminClose(s.as(s.alice), "SHUT")
		s.requireCode(err, models.CodeUnauthorized)
	})

	s.Run("admin closes and receives the deposit", func() {
		before := s.balance(s.admin, models.PaymentNative)
		res, err := s.service.AdminClose(s.as(s.admin), "SHUT")
		s.Require().NoError(err)
		s.Equal(before+models.DefaultKeeperReward, s.balance(s.admin, models.PaymentNative))
		s.Equal(models.DefaultKeeperReward, res.Reward)

		_, err = s.lookup("SHUT")
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *ServiceSuite) TestFund() {
	s.Run("system address cannot be funded", func() {
		err := s.service.Fund(context.Background(), domain.Address{}, models.PaymentUSDC, 1)
		s.requireCode(err, models.CodeInvalidOwner)
	})
}
