package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	"tns/pkg/platform/sentinel"
)

// store is what both ledger implementations offer.
type store interface {
	ports.Ledger
	ports.SymbolScanner
	ports.Outbox
}

// =============================================================================
// Ledger Contract Suite
// =============================================================================
// Shared by the in-memory and Postgres ledgers. newStore must return an empty
// ledger on every call.

type ContractSuite struct {
	suite.Suite
	newStore func() store
	store    store
	ctx      context.Context
	now      time.Time
	admin    domain.Address
}

func (s *ContractSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.admin = domain.DeriveAddress("test", []byte("admin"))
}

func (s *ContractSuite) tx(fn func(tx ports.LedgerStore) error) error {
	return s.store.RunInTx(s.ctx, fn)
}

func (s *ContractSuite) record(symbol string, expires time.Time) *models.SymbolRecord {
	return &models.SymbolRecord{
		Symbol:       symbol,
		Address:      models.SymbolAddress(symbol),
		Mint:         domain.DeriveAddress("mint", []byte(symbol)),
		Owner:        s.admin,
		RegisteredAt: expires.Add(-models.Year),
		ExpiresAt:    expires,
		Deposit:      models.DefaultKeeperReward,
	}
}

func (s *ContractSuite) create(recs ...*models.SymbolRecord) {
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		for _, rec := range recs {
			if err := tx.CreateSymbol(s.ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}))
}

// =============================================================================
// Config
// =============================================================================

func (s *ContractSuite) TestConfigSingleton() {
	err := s.tx(func(tx ports.LedgerStore) error {
		_, err := tx.Config(s.ctx)
		return err
	})
	s.ErrorIs(err, sentinel.ErrNotFound)

	feed := domain.DeriveAddress("feed", []byte("TNS/USD"))
	cfg := models.NewConfig(s.admin, s.admin, domain.DeriveAddress("feed", []byte("SOL/USD")), &feed, s.now)
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error { return tx.CreateConfig(s.ctx, cfg) }))

	err = s.tx(func(tx ports.LedgerStore) error { return tx.CreateConfig(s.ctx, cfg) })
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	cfg.Paused = false
	cfg.Phase = models.PhaseFull
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error { return tx.SaveConfig(s.ctx, cfg) }))

	var got *models.Config
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		var err error
		got, err = tx.Config(s.ctx)
		return err
	}))
	s.False(got.Paused)
	s.Equal(models.PhaseFull, got.Phase)
	s.Require().NotNil(got.ProtocolPriceFeed)
	s.Equal(feed, *got.ProtocolPriceFeed)
	s.True(got.LaunchedAt.Equal(s.now))
}

// =============================================================================
// Symbols
// =============================================================================

func (s *ContractSuite) TestSymbolLifecycle() {
	rec := s.record("BONK", s.now.Add(models.Year))
	s.create(rec)

	s.Run("duplicate create is rejected", func() {
		err := s.tx(func(tx ports.LedgerStore) error { return tx.CreateSymbol(s.ctx, rec) })
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("symbols are case sensitive", func() {
		s.create(s.record("bonk", s.now.Add(models.Year)))
	})

	s.Run("save and find", func() {
		updated := *rec
		updated.Owner = domain.DeriveAddress("test", []byte("bob"))
		updated.ExpiresAt = rec.ExpiresAt.Add(models.Year)
		s.Require().NoError(s.tx(func(tx ports.LedgerStore) error { return tx.SaveSymbol(s.ctx, &updated) }))

		var got *models.SymbolRecord
		s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
			var err error
			got, err = tx.FindSymbol(s.ctx, "BONK")
			return err
		}))
		s.Equal(updated.Owner, got.Owner)
		s.True(got.ExpiresAt.Equal(updated.ExpiresAt))
		s.Equal(models.DefaultKeeperReward, got.Deposit)
	})

	s.Run("find many skips unknown", func() {
		var got []*models.SymbolRecord
		s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
			var err error
			got, err = tx.FindSymbols(s.ctx, []string{"BONK", "NOPE", "bonk"})
			return err
		}))
		s.Len(got, 2)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.tx(func(tx ports.LedgerStore) error { return tx.DeleteSymbol(s.ctx, "BONK") }))
		err := s.tx(func(tx ports.LedgerStore) error {
			_, err := tx.FindSymbol(s.ctx, "BONK")
			return err
		})
		s.ErrorIs(err, sentinel.ErrNotFound)

		err = s.tx(func(tx ports.LedgerStore) error { return tx.DeleteSymbol(s.ctx, "BONK") })
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ContractSuite) TestConcurrentCreateHasOneWinner() {
	const writers = 20
	start := make(chan struct{})
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := s.record("RACE", s.now.Add(models.Year))
			rec.Owner = domain.DeriveAddress("test", []byte(fmt.Sprintf("writer-%d", i)))
			<-start
			errs[i] = s.tx(func(tx ports.LedgerStore) error { return tx.CreateSymbol(s.ctx, rec) })
		}()
	}
	close(start)
	wg.Wait()

	created, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			taken++
		default:
			s.Fail("unexpected error", err.Error())
		}
	}
	s.Equal(1, created)
	s.Equal(writers-1, taken)

	var got []*models.SymbolRecord
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		var err error
		got, err = tx.FindSymbols(s.ctx, []string{"RACE"})
		return err
	}))
	s.Len(got, 1)
}

func (s *ContractSuite) TestFailedTransactionRollsBack() {
	boom := errors.New("boom")
	err := s.tx(func(tx ports.LedgerStore) error {
		if err := tx.CreateSymbol(s.ctx, s.record("WIF", s.now)); err != nil {
			return err
		}
		if err := tx.Credit(s.ctx, s.admin, models.PaymentUSDC, 100); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		_, err := tx.FindSymbol(s.ctx, "WIF")
		s.ErrorIs(err, sentinel.ErrNotFound)
		balance, err := tx.Balance(s.ctx, s.admin, models.PaymentUSDC)
		s.Zero(balance)
		return err
	}))
}

func (s *ContractSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.store.RunInTx(ctx, func(ports.LedgerStore) error {
		s.Fail("transaction body must not run")
		return nil
	})
	s.Error(err)
}

// =============================================================================
// Balances
// =============================================================================

func (s *ContractSuite) TestBalances() {
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		if err := tx.Credit(s.ctx, s.admin, models.PaymentUSDC, 1_000); err != nil {
			return err
		}
		return tx.Credit(s.ctx, s.admin, models.PaymentUSDC, 500)
	}))

	err := s.tx(func(tx ports.LedgerStore) error {
		return tx.Debit(s.ctx, s.admin, models.PaymentUSDC, 1_501)
	})
	s.ErrorIs(err, sentinel.ErrInsufficient)

	err = s.tx(func(tx ports.LedgerStore) error {
		return tx.Debit(s.ctx, s.admin, models.PaymentUSDT, 1)
	})
	s.ErrorIs(err, sentinel.ErrInsufficient)

	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		if err := tx.Debit(s.ctx, s.admin, models.PaymentUSDC, 1_500); err != nil {
			return err
		}
		balance, err := tx.Balance(s.ctx, s.admin, models.PaymentUSDC)
		s.Zero(balance)
		return err
	}))
}

// =============================================================================
// Scanning
// =============================================================================

func (s *ContractSuite) TestListExpiredBefore() {
	s.create(
		s.record("OLD", s.now.Add(-3*models.Year)),
		s.record("OLDER", s.now.Add(-4*models.Year)),
		s.record("EDGE", s.now),
		s.record("LIVE", s.now.Add(models.Year)),
	)

	got, err := s.store.ListExpiredBefore(s.ctx, s.now, 10)
	s.Require().NoError(err)
	s.Equal([]string{"OLDER", "OLD"}, symbolsOf(got))

	got, err = s.store.ListExpiredBefore(s.ctx, s.now, 1)
	s.Require().NoError(err)
	s.Equal([]string{"OLDER"}, symbolsOf(got))
}

func (s *ContractSuite) TestListSymbolsPages() {
	for i := range 5 {
		s.create(s.record(fmt.Sprintf("S%d", i), s.now))
	}
	first, err := s.store.ListSymbols(s.ctx, "", 3)
	s.Require().NoError(err)
	s.Equal([]string{"S0", "S1", "S2"}, symbolsOf(first))

	rest, err := s.store.ListSymbols(s.ctx, "S2", 3)
	s.Require().NoError(err)
	s.Equal([]string{"S3", "S4"}, symbolsOf(rest))
}

// =============================================================================
// Outbox
// =============================================================================

func (s *ContractSuite) TestOutbox() {
	s.Require().NoError(s.tx(func(tx ports.LedgerStore) error {
		for _, sym := range []string{"A", "B", "C"} {
			if err := tx.AppendEvent(s.ctx, models.Event{
				Type:       models.EventSymbolRegistered,
				Symbol:     sym,
				Actor:      s.admin,
				OccurredAt: s.now,
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	pending, err := s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 3)
	s.Equal("A", pending[0].Symbol)
	s.Less(pending[0].Seq, pending[1].Seq)
	s.Equal(models.EventSymbolRegistered, pending[2].Type)
	s.JSONEq(fmt.Sprintf(`{"type":"SymbolRegistered","symbol":"C","actor":%q,"occurred_at":"2026-01-01T00:00:00Z"}`, s.admin), string(pending[2].Payload))

	s.Require().NoError(s.store.MarkPublished(s.ctx, []uuid.UUID{pending[0].ID, pending[1].ID}, s.now))
	pending, err = s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("C", pending[0].Symbol)
}

func symbolsOf(recs []*models.SymbolRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Symbol)
	}
	return out
}
