package service

import (
	"tns/internal/registry/models"
	"tns/pkg/domain"
)

// =============================================================================
// Transfer Tests
// =============================================================================

func (s *ServiceSuite) TestTransfer() {
	s.launch(models.PhaseFull)
	s.register(s.alice, "XFER", 1)

	s.Run("non owner is rejected", func() {
		_, err := s.service.Transfer(s.as(s.bob), "XFER", s.bob)
		s.requireCode(err, models.CodeUnauthorized)
	})

	s.Run("system address is rejected", func() {
		_, err := s.service.Transfer(s.as(s.alice), "XFER", domain.Address{})
		s.requireCode(err, models.CodeInvalidOwner)
	})

	s.Run("transfer to self fails SameOwner", func() {
		_, err := s.service.Transfer(s.as(s.alice), "XFER", s.alice)
		s.requireCode(err, models.CodeSameOwner)
	})

	s.Run("owner hands the record over even while paused", func() {
		paused := true
		_, err := s.service.UpdateConfig(s.as(s.admin), models.ConfigUpdate{Paused: &paused})
		s.Require().NoError(err)

		rec, err := s.service.Transfer(s.as(s.alice), "XFER", s.bob)
		s.Require().NoError(err)
		s.Equal(s.bob, rec.Owner)

		ev := s.lastEvent()
		s.Equal(models.EventOwnershipTransferred, ev.Type)
		s.Equal(s.alice, *ev.PreviousOwner)
		s.Equal(s.bob, *ev.Owner)

		_, err = s.service.Transfer(s.as(s.alice), "XFER", s.alice)
		s.requireCode(err, models.CodeUnauthorized)
	})
}

func (s *ServiceSuite) TestTransferRoundTripRestoresOwner() {
	s.launch(models.PhaseFull)
	original := s.register(s.alice, "BACK", 2)

	_, err := s.service.Transfer(s.as(s.alice), "BACK", s.bob)
	s.Require().NoError(err)
	rec, err := s.service.Transfer(s.as(s.bob), "BACK", s.alice)
	s.Require().NoError(err)

	s.Equal(s.alice, rec.Owner)
	got, err := s.lookup("BACK")
	s.Require().NoError(err)
	s.Equal(*original, *got.Record)
	s.Equal(models.StateActive, got.State)
}

// =============================================================================
// Claim Tests
// =============================================================================

func (s *ServiceSuite) TestClaim() {
	s.launch(models.PhaseFull)

	// registerMint registers symbol for alice against a mint with the given
	// authorities and supply.
	registerMint := func(symbol string, mintAuthority, updateAuthority *domain.Address, supply uint64) domain.Address {
		mint := addr("claim-" + symbol)
		account := s.assets.ClassicMint(mint, symbol, mintAuthority, updateAuthority, supply)
		_, err := s.service.Register(s.as(s.alice), RegisterRequest{
			Symbol: symbol, Mint: mint, MetadataAccount: account, Years: 1, Payment: s.usdc(1_000_000_000),
		})
		s.Require().NoError(err)
		return mint
	}
	holding := func(owner, mint domain.Address, amount uint64) *domain.Address {
		at := domain.DeriveAddress("holding", owner.Bytes(), mint.Bytes())
		s.assets.PutHolding(models.Holding{Address: at, Owner: owner, Mint: mint, Amount: amount})
		return &at
	}

	s.Run("update authority wins first", func() {
		mint := registerMint("UA", &s.bob, &s.bob, 100)
		rec, claimType, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "UA", MetadataAccount: models.LinkedMetadataAddress(mint),
		})
		s.Require().NoError(err)
		s.Equal(models.ClaimUpdateAuthority, claimType)
		s.Equal(s.bob, rec.Owner)

		ev := s.lastEvent()
		s.Equal(models.EventOwnershipClaimed, ev.Type)
		s.Equal(models.ClaimUpdateAuthority, ev.ClaimType)
	})

	s.Run("mint authority claims when it is not the update authority", func() {
		mint := registerMint("MA", &s.bob, nil, 100)
		_, claimType, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "MA", MetadataAccount: models.LinkedMetadataAddress(mint),
		})
		s.Require().NoError(err)
		s.Equal(models.ClaimMintAuthority, claimType)
	})

	s.Run("strict majority holder claims", func() {
		mint := registerMint("MAJ", nil, nil, 100)
		_, claimType, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "MAJ", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.bob, mint, 51),
		})
		s.Require().NoError(err)
		s.Equal(models.ClaimMajorityHolder, claimType)
	})

	s.Run("sixty percent holder claims", func() {
		mint := registerMint("SIXTY", nil, nil, 1_000)
		rec, claimType, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "SIXTY", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.bob, mint, 600),
		})
		s.Require().NoError(err)
		s.Equal(models.ClaimMajorityHolder, claimType)
		s.Equal(s.bob, rec.Owner)
	})

	s.Run("one percent holder fails NotTokenAuthority", func() {
		mint := registerMint("ONEPCT", nil, nil, 1_000)
		_, _, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "ONEPCT", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.bob, mint, 10),
		})
		s.requireCode(err, models.CodeNotTokenAuthority)

		got, err := s.lookup("ONEPCT")
		s.Require().NoError(err)
		s.Equal(s.alice, got.Record.Owner)
	})

	s.Run("exactly half of supply is not a majority", func() {
		mint := registerMint("HALF", nil, nil, 100)
		_, _, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "HALF", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.bob, mint, 50),
		})
		s.requireCode(err, models.CodeNotTokenAuthority)
	})

	s.Run("holding of another owner or mint does not count", func() {
		mint := registerMint("FOREIGN", nil, nil, 100)
		_, _, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "FOREIGN", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.alice, mint, 90),
		})
		s.requireCode(err, models.CodeNotTokenAuthority)

		_, _, err = s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "FOREIGN", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.bob, addr("elsewhere"), 90),
		})
		s.requireCode(err, models.CodeNotTokenAuthority)
	})

	s.Run("zero supply never yields a majority", func() {
		mint := registerMint("ZERO", nil, nil, 0)
		_, _, err := s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "ZERO", MetadataAccount: models.LinkedMetadataAddress(mint), Holding: holding(s.bob, mint, 0),
		})
		s.requireCode(err, models.CodeNotTokenAuthority)
	})

	s.Run("current owner fails AlreadyOwner", func() {
		mint := registerMint("MINE", &s.alice, &s.alice, 100)
		_, _, err := s.service.Claim(s.as(s.alice), ClaimRequest{
			Symbol: "MINE", MetadataAccount: models.LinkedMetadataAddress(mint),
		})
		s.requireCode(err, models.CodeAlreadyOwner)
	})

	s.Run("claim is allowed while paused", func() {
		mint := registerMint("PAUSE", nil, &s.bob, 100)
		paused := true
		_, err := s.service.UpdateConfig(s.as(s.admin), models.ConfigUpdate{Paused: &paused})
		s.Require().NoError(err)

		_, _, err = s.service.Claim(s.as(s.bob), ClaimRequest{
			Symbol: "PAUSE", MetadataAccount: models.LinkedMetadataAddress(mint),
		})
		s.NoError(err)
	})
}
