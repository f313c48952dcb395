package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tns/internal/registry/models"
	"tns/internal/registry/oracle"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

type PricingSuite struct {
	suite.Suite
	launch       time.Time
	nativeFeed   domain.Address
	protocolFeed domain.Address
	cfg          *models.Config
}

func TestPricingSuite(t *testing.T) {
	suite.Run(t, new(PricingSuite))
}

func (s *PricingSuite) SetupTest() {
	s.launch = time.Unix(1_700_000_000, 0).UTC()
	s.nativeFeed = domain.DeriveAddress("feed", []byte("SOL/USD"))
	s.protocolFeed = domain.DeriveAddress("feed", []byte("TNS/USD"))
	admin := domain.DeriveAddress("test", []byte("admin"))
	s.cfg = models.NewConfig(admin, admin, s.nativeFeed, nil, s.launch)
}

func (s *PricingSuite) nativeQuote(dollars int64, at time.Time) *oracle.Quote {
	return &oracle.Quote{Feed: s.nativeFeed, Price: dollars * 100_000_000, Exponent: -8, PublishedAt: at}
}

func (s *PricingSuite) TestAnnualPrice() {
	s.Run("base price during the first year", func() {
		s.Equal(uint64(10_000_000), AnnualPrice(s.cfg, s.launch))
		s.Equal(uint64(10_000_000), AnnualPrice(s.cfg, s.launch.Add(models.Year-time.Second)))
	})

	s.Run("compounds once per elapsed year", func() {
		s.Equal(uint64(10_700_000), AnnualPrice(s.cfg, s.launch.Add(models.Year)))
		s.Equal(uint64(11_449_000), AnnualPrice(s.cfg, s.launch.Add(2*models.Year)))
	})

	s.Run("compounding stops at fifty years", func() {
		fifty := AnnualPrice(s.cfg, s.launch.Add(50*models.Year))
		s.Equal(fifty, AnnualPrice(s.cfg, s.launch.Add(60*models.Year)))
		s.Greater(fifty, AnnualPrice(s.cfg, s.launch.Add(49*models.Year)))
	})

	s.Run("clock before launch charges base price", func() {
		s.Equal(uint64(10_000_000), AnnualPrice(s.cfg, s.launch.Add(-time.Hour)))
	})
}

func (s *PricingSuite) TestRegistrationUSD() {
	s.Run("single year has no discount", func() {
		usd, err := RegistrationUSD(s.cfg, 1, s.launch)
		s.Require().NoError(err)
		s.Equal(uint64(10_000_000), usd)
	})

	s.Run("two years take five percent off", func() {
		usd, err := RegistrationUSD(s.cfg, 2, s.launch)
		s.Require().NoError(err)
		s.Equal(uint64(19_000_000), usd)
	})

	s.Run("ten years take twenty five percent off", func() {
		usd, err := RegistrationUSD(s.cfg, 10, s.launch)
		s.Require().NoError(err)
		s.Equal(uint64(75_000_000), usd)
	})

	s.Run("out of range years are rejected", func() {
		_, err := RegistrationUSD(s.cfg, 0, s.launch)
		s.True(dErrors.HasCode(err, models.CodeInvalidYears))
		_, err = RegistrationUSD(s.cfg, 11, s.launch)
		s.True(dErrors.HasCode(err, models.CodeExceedsMaxYears))
	})
}

func (s *PricingSuite) TestUSDCost() {
	s.Run("protocol token pays seventy five percent", func() {
		usd, err := USDCost(s.cfg, OpRegister, 2, models.PaymentProtocol, s.launch)
		s.Require().NoError(err)
		s.Equal(uint64(14_250_000), usd)
	})

	s.Run("asset update costs half the annual price", func() {
		usd, err := USDCost(s.cfg, OpUpdateAsset, 0, models.PaymentUSDC, s.launch)
		s.Require().NoError(err)
		s.Equal(uint64(5_000_000), usd)
	})
}

func (s *PricingSuite) TestPrice() {
	now := s.launch.Add(time.Hour)

	s.Run("native payment converts through the quote", func() {
		cost, err := Price(s.cfg, OpRegister, 1, models.PaymentNative, s.nativeQuote(200, now), 50_000_000, now)
		s.Require().NoError(err)
		s.Equal(uint64(10_000_000), cost.USDMicro)
		s.Equal(uint64(50_000_000), cost.Amount)
	})

	s.Run("cost above max_cost fails", func() {
		_, err := Price(s.cfg, OpRegister, 1, models.PaymentNative, s.nativeQuote(200, now), 49_999_999, now)
		s.True(dErrors.HasCode(err, models.CodeSlippageExceeded))
	})

	s.Run("price drop between quote and execution trips the ceiling", func() {
		_, err := Price(s.cfg, OpRegister, 1, models.PaymentNative, s.nativeQuote(100, now), 50_000_000, now)
		s.True(dErrors.HasCode(err, models.CodeSlippageExceeded))
	})

	s.Run("native payment without a quote fails", func() {
		_, err := Price(s.cfg, OpRegister, 1, models.PaymentNative, nil, 1<<62, now)
		s.True(dErrors.HasCode(err, models.CodeInvalidPriceFeed))
	})

	s.Run("stale native quote fails", func() {
		_, err := Price(s.cfg, OpRegister, 1, models.PaymentNative, s.nativeQuote(200, now.Add(-2*time.Hour)), 1<<62, now)
		s.True(dErrors.HasCode(err, models.CodeStalePriceFeed))
	})

	s.Run("stablecoins settle one to one", func() {
		cost, err := Price(s.cfg, OpRenew, 1, models.PaymentUSDT, nil, 10_000_000, now)
		s.Require().NoError(err)
		s.Equal(uint64(10_000_000), cost.Amount)
	})

	s.Run("protocol token is pegged when no feed is configured", func() {
		cost, err := Price(s.cfg, OpRegister, 10, models.PaymentProtocol, nil, 1<<62, now)
		s.Require().NoError(err)
		s.Equal(uint64(56_250_000), cost.Amount)
	})

	s.Run("protocol token uses its own feed when configured", func() {
		feed := s.protocolFeed
		s.cfg.ProtocolPriceFeed = &feed
		q := &oracle.Quote{Feed: s.protocolFeed, Price: 50, Exponent: -2, PublishedAt: now}

		cost, err := Price(s.cfg, OpRegister, 1, models.PaymentProtocol, q, 1<<62, now)
		s.Require().NoError(err)
		// $7.50 at $0.50 per token
		s.Equal(uint64(15_000_000), cost.Amount)

		_, err = Price(s.cfg, OpRegister, 1, models.PaymentProtocol, s.nativeQuote(200, now), 1<<62, now)
		s.True(dErrors.HasCode(err, models.CodePriceFeedMismatch))
	})
}
