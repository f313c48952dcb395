package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tns/internal/registry/handler/mocks"
	"tns/internal/registry/models"
	"tns/internal/registry/pricing"
	"tns/internal/registry/service"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

type stubValidator map[string]domain.Address

func (s stubValidator) ValidateToken(token string) (domain.Address, error) {
	if a, ok := s[token]; ok {
		return a, nil
	}
	return domain.Address{}, errors.New("bad token")
}

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	alice   domain.Address
	now     time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.alice = domain.DeriveAddress("test", []byte("alice"))
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	h := New(s.service, stubValidator{"alice": s.alice}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			s.Require().NoError(err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) record(symbol string) *models.SymbolRecord {
	return &models.SymbolRecord{
		Symbol:       symbol,
		Address:      models.SymbolAddress(symbol),
		Mint:         domain.DeriveAddress("mint", []byte(symbol)),
		Owner:        s.alice,
		RegisteredAt: s.now,
		ExpiresAt:    s.now.Add(models.Year),
		Deposit:      models.DefaultKeeperReward,
	}
}

// =============================================================================
// Authentication
// =============================================================================

func (s *HandlerSuite) TestMutationsRequireSigner() {
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/symbols"},
		{http.MethodPost, "/v1/symbols/BONK/renew"},
		{http.MethodDelete, "/v1/symbols/BONK"},
		{http.MethodPatch, "/v1/admin/symbols/BONK"},
		{http.MethodPost, "/v1/config/init"},
	} {
		w := s.do(tc.method, tc.path, "", "{}")
		s.Equal(http.StatusUnauthorized, w.Code, tc.path)
	}
}

func (s *HandlerSuite) TestInvalidTokenRejectedOnReads() {
	w := s.do(http.MethodGet, "/v1/symbols/BONK", "mallory", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

// =============================================================================
// Reads
// =============================================================================

func (s *HandlerSuite) TestLookup() {
	s.Run("found", func() {
		rec := s.record("BONK")
		s.service.EXPECT().Lookup(gomock.Any(), "BONK").
			Return(&service.Lookup{Record: rec, State: models.StateActive}, nil)

		w := s.do(http.MethodGet, "/v1/symbols/BONK", "", nil)
		s.Equal(http.StatusOK, w.Code)
		body := s.decodeBody(w)
		s.Equal("BONK", body["symbol"])
		s.Equal("active", body["state"])
		s.Equal(s.alice.String(), body["owner"])
	})

	s.Run("escaped symbol is unescaped", func() {
		s.service.EXPECT().Lookup(gomock.Any(), "A/B c").
			Return(&service.Lookup{Record: s.record("A/B c"), State: models.StateGrace}, nil)

		w := s.do(http.MethodGet, "/v1/symbols/A%2FB%20c", "", nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("missing symbol is 404", func() {
		s.service.EXPECT().Lookup(gomock.Any(), "NOPE").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "symbol not found"))

		w := s.do(http.MethodGet, "/v1/symbols/NOPE", "", nil)
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal("not_found", s.decodeBody(w)["error"])
	})
}

func (s *HandlerSuite) TestLookupMany() {
	s.Run("returns found records", func() {
		s.service.EXPECT().LookupMany(gomock.Any(), []string{"A", "B"}).
			Return([]service.Lookup{{Record: s.record("A"), State: models.StateActive}}, nil)

		w := s.do(http.MethodGet, "/v1/symbols?symbol=A&symbol=B&symbol=A", "", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Len(s.decodeBody(w)["symbols"], 1)
	})

	s.Run("no symbols is a bad request", func() {
		w := s.do(http.MethodGet, "/v1/symbols", "", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("too many symbols is a bad request", func() {
		path := "/v1/symbols?symbol=X"
		for i := range maxLookup {
			path += fmt.Sprintf("&symbol=X%d", i)
		}
		w := s.do(http.MethodGet, path, "", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestQuote() {
	s.Run("parses query", func() {
		s.service.EXPECT().Quote(gomock.Any(), service.QuoteRequest{
			Operation: pricing.OpRenew,
			Years:     3,
			Method:    models.PaymentUSDC,
		}).Return(pricing.Cost{USDMicro: 27_600_000, Amount: 27_600_000, Method: models.PaymentUSDC}, nil)

		w := s.do(http.MethodGet, "/v1/quote?operation=renew&years=3&payment_method=usdc", "", nil)
		s.Equal(http.StatusOK, w.Code)
		body := s.decodeBody(w)
		s.Equal("renew", body["operation"])
		s.EqualValues(27_600_000, body["amount"])
	})

	s.Run("unknown operation", func() {
		w := s.do(http.MethodGet, "/v1/quote?operation=mint", "", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("years out of range", func() {
		w := s.do(http.MethodGet, "/v1/quote?payment_method=usdc&years=300", "", nil)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("ExceedsMaxYears", s.decodeBody(w)["error"])

		w = s.do(http.MethodGet, "/v1/quote?payment_method=usdc&years=-1", "", nil)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("InvalidYears", s.decodeBody(w)["error"])
	})
}

// =============================================================================
// Mutations
// =============================================================================

func (s *HandlerSuite) TestRegister() {
	mint := domain.DeriveAddress("mint", []byte("BONK"))
	account := domain.DeriveAddress("metadata", mint.Bytes())

	s.Run("maps body to request", func() {
		s.service.EXPECT().Register(gomock.Any(), service.RegisterRequest{
			Symbol:          "BONK",
			Mint:            mint,
			MetadataAccount: account,
			Years:           2,
			Payment:         service.Payment{Method: models.PaymentUSDC, MaxCost: 20_000_000},
		}).DoAndReturn(func(ctx context.Context, _ service.RegisterRequest) (*service.RegisterResult, error) {
			s.Equal(s.alice, requestcontext.Signer(ctx))
			return &service.RegisterResult{
				Record: s.record("BONK"),
				Charge: models.Charge{Method: models.PaymentUSDC, Total: 19_000_000},
			}, nil
		})

		w := s.do(http.MethodPost, "/v1/symbols", "alice", map[string]any{
			"symbol":           "BONK",
			"mint":             mint,
			"metadata_account": account,
			"years":            2,
			"payment_method":   "usdc",
			"max_cost":         20_000_000,
		})
		s.Equal(http.StatusCreated, w.Code)
		charge := s.decodeBody(w)["charge"].(map[string]any)
		s.EqualValues(19_000_000, charge["total"])
	})

	s.Run("unknown fields are rejected", func() {
		w := s.do(http.MethodPost, "/v1/symbols", "alice", `{"symbol":"BONK","bogus":1}`)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("bad_request", s.decodeBody(w)["error"])
	})

	s.Run("missing max cost", func() {
		w := s.do(http.MethodPost, "/v1/symbols", "alice", map[string]any{"symbol": "BONK", "years": 1})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("years out of range carry registry codes", func() {
		cases := []struct {
			years any
			code  string
		}{
			{300, "ExceedsMaxYears"},
			{11, "ExceedsMaxYears"},
			{0, "InvalidYears"},
			{-1, "InvalidYears"},
		}
		for _, tc := range cases {
			w := s.do(http.MethodPost, "/v1/symbols", "alice", map[string]any{
				"symbol": "BONK", "years": tc.years, "payment_method": "usdc", "max_cost": 1,
			})
			s.Equal(http.StatusBadRequest, w.Code)
			s.Equal(tc.code, s.decodeBody(w)["error"], "years %v", tc.years)
		}

		w := s.do(http.MethodPost, "/v1/symbols/BONK/renew", "alice", map[string]any{
			"years": 300, "payment_method": "usdc", "max_cost": 1,
		})
		s.Equal("ExceedsMaxYears", s.decodeBody(w)["error"])
	})

	s.Run("unknown payment method", func() {
		w := s.do(http.MethodPost, "/v1/symbols", "alice", map[string]any{
			"symbol": "BONK", "years": 1, "payment_method": "doge", "max_cost": 1,
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestErrorStatuses() {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"paused", dErrors.New(models.CodePaused, "registry is paused"), http.StatusServiceUnavailable, "Paused"},
		{"slippage", dErrors.New(models.CodeSlippageExceeded, "cost exceeds max"), http.StatusPreconditionFailed, "SlippageExceeded"},
		{"funds", dErrors.New(models.CodeInsufficientFunds, "balance too low"), http.StatusPaymentRequired, "InsufficientFunds"},
		{"stale", dErrors.New(models.CodeStalePriceFeed, "quote too old"), http.StatusUnprocessableEntity, "StalePriceFeed"},
		{"unauthorized", dErrors.New(models.CodeUnauthorized, "not the owner"), http.StatusForbidden, "Unauthorized"},
		{"taken", dErrors.New(models.CodeAlreadyInUse, "symbol taken"), http.StatusConflict, "AlreadyInUse"},
		{"quote held", dErrors.New(models.CodeQuoteInUse, "quote in use"), http.StatusConflict, "QuoteInUse"},
		{"years", dErrors.New(models.CodeInvalidYears, "years must be 1..10"), http.StatusBadRequest, "InvalidYears"},
		{"uncoded", errors.New("db exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.service.EXPECT().Cancel(gomock.Any(), "BONK").Return(nil, tc.err)

			w := s.do(http.MethodDelete, "/v1/symbols/BONK", "alice", nil)
			s.Equal(tc.status, w.Code)
			body := s.decodeBody(w)
			s.Equal(tc.code, body["error"])
			if tc.status >= http.StatusInternalServerError {
				s.Empty(body["error_description"])
			} else {
				s.NotEmpty(body["error_description"])
			}
		})
	}
}

func (s *HandlerSuite) TestClaim() {
	holding := domain.DeriveAddress("holding", []byte("alice"))
	account := domain.DeriveAddress("metadata", []byte("BONK"))
	s.service.EXPECT().Claim(gomock.Any(), service.ClaimRequest{
		Symbol:          "BONK",
		MetadataAccount: account,
		Holding:         &holding,
	}).Return(s.record("BONK"), models.ClaimMajorityHolder, nil)

	w := s.do(http.MethodPost, "/v1/symbols/BONK/claim", "alice", map[string]any{
		"metadata_account": account,
		"holding":          holding,
	})
	s.Equal(http.StatusOK, w.Code)
	s.Equal(string(models.ClaimMajorityHolder), s.decodeBody(w)["claim_type"])
}

func (s *HandlerSuite) TestUpdateConfigRejectsBadPhase() {
	w := s.do(http.MethodPatch, "/v1/config", "alice", map[string]any{"phase": 9})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("InvalidPhase", s.decodeBody(w)["error"])
}

func (s *HandlerSuite) TestAdminUpdate() {
	expiry := s.now.Add(3 * models.Year)
	s.service.EXPECT().AdminUpdate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req service.AdminUpdateRequest) (*models.SymbolRecord, error) {
			s.Equal("BONK", req.Symbol)
			s.Nil(req.NewOwner)
			s.Require().NotNil(req.NewExpiry)
			s.True(req.NewExpiry.Equal(expiry))
			rec := s.record("BONK")
			rec.ExpiresAt = expiry
			return rec, nil
		})

	w := s.do(http.MethodPatch, "/v1/admin/symbols/BONK", "alice", map[string]any{"new_expiry": expiry})
	s.Equal(http.StatusOK, w.Code)
}
