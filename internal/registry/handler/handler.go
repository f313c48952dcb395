// Package handler exposes the symbol registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tns/internal/registry/models"
	"tns/internal/registry/pricing"
	"tns/internal/registry/service"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/httputil"
	"tns/pkg/platform/middleware/auth"
	platformstrings "tns/pkg/platform/strings"
	"tns/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// maxLookup bounds GET /symbols.
const maxLookup = 100

// Service is the registry as the HTTP layer sees it.
type Service interface {
	Initialize(ctx context.Context, req service.InitializeRequest) (*models.Config, error)
	UpdateConfig(ctx context.Context, u models.ConfigUpdate) (*models.Config, error)
	Config(ctx context.Context) (*models.Config, error)

	Register(ctx context.Context, req service.RegisterRequest) (*service.RegisterResult, error)
	ClaimExpired(ctx context.Context, req service.RegisterRequest) (*service.RegisterResult, error)
	Seed(ctx context.Context, req service.SeedRequest) (*models.SymbolRecord, error)
	Renew(ctx context.Context, req service.RenewRequest) (*service.RegisterResult, error)
	UpdateAsset(ctx context.Context, req service.UpdateAssetRequest) (*service.RegisterResult, error)
	Transfer(ctx context.Context, symbol string, newOwner domain.Address) (*models.SymbolRecord, error)
	Claim(ctx context.Context, req service.ClaimRequest) (*models.SymbolRecord, models.ClaimType, error)
	Cancel(ctx context.Context, symbol string) (*service.CloseResult, error)
	VerifyOrClose(ctx context.Context, symbol string, metadataAccount domain.Address) (*service.CloseResult, error)
	AdminUpdate(ctx context.Context, req service.AdminUpdateRequest) (*models.SymbolRecord, error)
	AdminClose(ctx context.Context, symbol string) (*service.CloseResult, error)

	Quote(ctx context.Context, req service.QuoteRequest) (pricing.Cost, error)
	Lookup(ctx context.Context, symbol string) (*service.Lookup, error)
	LookupMany(ctx context.Context, symbols []string) ([]service.Lookup, error)
}

// Handler serves the /v1 registry routes.
type Handler struct {
	registry  Service
	validator auth.SignerValidator
	logger    *slog.Logger
}

func New(registry Service, validator auth.SignerValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: registry, validator: validator, logger: logger}
}

// Register mounts the routes. Reads are public; every mutation needs a
// signer token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Signers(h.validator, h.logger))

		r.Get("/config", h.handleGetConfig)
		r.Get("/symbols", h.handleLookupMany)
		r.Get("/symbols/{symbol}", h.handleLookup)
		r.Get("/quote", h.handleQuote)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSigner(h.logger))

			r.Post("/config/init", h.handleInitialize)
			r.Patch("/config", h.handleUpdateConfig)

			r.Post("/symbols", h.handleRegister)
			r.Post("/symbols/seed", h.handleSeed)
			r.Post("/symbols/{symbol}/renew", h.handleRenew)
			r.Put("/symbols/{symbol}/asset", h.handleUpdateAsset)
			r.Post("/symbols/{symbol}/transfer", h.handleTransfer)
			r.Post("/symbols/{symbol}/claim", h.handleClaim)
			r.Post("/symbols/{symbol}/takeover", h.handleTakeover)
			r.Post("/symbols/{symbol}/verify", h.handleVerify)
			r.Delete("/symbols/{symbol}", h.handleCancel)

			r.Patch("/admin/symbols/{symbol}", h.handleAdminUpdate)
			r.Delete("/admin/symbols/{symbol}", h.handleAdminClose)
		})
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"path", r.URL.Path,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// symbolParam returns the unescaped {symbol} path segment. Symbols may hold
// any bytes, so clients percent-encode them.
func (h *Handler) symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol, err := url.PathUnescape(chi.URLParam(r, "symbol"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "symbol is not a valid path segment"))
		return "", false
	}
	return symbol, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	code, ok := dErrors.CodeOf(err)
	if !ok || code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		h.logger.ErrorContext(ctx, "registry operation failed",
			"operation", op,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.InfoContext(ctx, "registry operation rejected",
			"operation", op,
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteErrorWith(w, err, statusFor)
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg, err := h.registry.Initialize(r.Context(), service.InitializeRequest{
		FeeCollector:      req.FeeCollector,
		NativePriceFeed:   req.NativePriceFeed,
		ProtocolPriceFeed: req.ProtocolPriceFeed,
	})
	if err != nil {
		h.writeError(w, r, "initialize", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toConfigResponse(cfg))
}

func (h *Handler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		h.writeError(w, r, "update_config", err)
		return
	}
	cfg, err := h.registry.UpdateConfig(r.Context(), u)
	if err != nil {
		h.writeError(w, r, "update_config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.registry.Config(r.Context())
	if err != nil {
		h.writeError(w, r, "config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	found, err := h.registry.Lookup(r.Context(), symbol)
	if err != nil {
		h.writeError(w, r, "lookup", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSymbolResponse(found.Record, found.State))
}

// handleLookupMany answers GET /symbols?symbol=A&symbol=B. Unknown symbols
// are omitted from the result.
func (h *Handler) handleLookupMany(w http.ResponseWriter, r *http.Request) {
	symbols := platformstrings.Dedupe(r.URL.Query()["symbol"])
	if len(symbols) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "at least one symbol is required"))
		return
	}
	if len(symbols) > maxLookup {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "too many symbols"))
		return
	}
	found, err := h.registry.LookupMany(r.Context(), symbols)
	if err != nil {
		h.writeError(w, r, "lookup_many", err)
		return
	}
	out := make([]symbolResponse, 0, len(found))
	for _, f := range found {
		out = append(out, toSymbolResponse(f.Record, f.State))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"symbols": out})
}

// handleQuote answers GET /quote?operation=register&years=2&payment_method=usdc.
// Native quotes need the signed price in price_quote.
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	op, err := pricing.ParseOperation(q.Get("operation"))
	if err != nil {
		h.writeError(w, r, "quote", err)
		return
	}
	method, err := models.ParsePaymentMethod(q.Get("payment_method"))
	if err != nil {
		h.writeError(w, r, "quote", err)
		return
	}
	var years uint8
	if raw := q.Get("years"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "years must be an integer"))
			return
		}
		if years, err = models.ParseYears(n); err != nil {
			h.writeError(w, r, "quote", err)
			return
		}
	}
	cost, err := h.registry.Quote(r.Context(), service.QuoteRequest{
		Operation:  op,
		Years:      years,
		Method:     method,
		PriceQuote: q.Get("price_quote"),
	})
	if err != nil {
		h.writeError(w, r, "quote", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quoteResponse{
		Operation:     op,
		Years:         years,
		PaymentMethod: cost.Method,
		USDMicro:      cost.USDMicro,
		Amount:        cost.Amount,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	years, err := models.ParseYears(req.Years)
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	payment, err := req.toPayment()
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	res, err := h.registry.Register(r.Context(), service.RegisterRequest{
		Symbol:          req.Symbol,
		Mint:            req.Mint,
		MetadataAccount: req.MetadataAccount,
		Years:           years,
		Payment:         payment,
	})
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPaidResponse(res))
}

func (h *Handler) handleTakeover(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req takeoverRequest
	if !h.decode(w, r, &req) {
		return
	}
	years, err := models.ParseYears(req.Years)
	if err != nil {
		h.writeError(w, r, "claim_expired", err)
		return
	}
	payment, err := req.toPayment()
	if err != nil {
		h.writeError(w, r, "claim_expired", err)
		return
	}
	res, err := h.registry.ClaimExpired(r.Context(), service.RegisterRequest{
		Symbol:          symbol,
		Mint:            req.Mint,
		MetadataAccount: req.MetadataAccount,
		Years:           years,
		Payment:         payment,
	})
	if err != nil {
		h.writeError(w, r, "claim_expired", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPaidResponse(res))
}

func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if !h.decode(w, r, &req) {
		return
	}
	years, err := models.ParseYears(req.Years)
	if err != nil {
		h.writeError(w, r, "seed", err)
		return
	}
	rec, err := h.registry.Seed(r.Context(), service.SeedRequest{
		Symbol:          req.Symbol,
		Mint:            req.Mint,
		MetadataAccount: req.MetadataAccount,
		Owner:           req.Owner,
		Years:           years,
	})
	if err != nil {
		h.writeError(w, r, "seed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSymbolResponse(rec, models.StateActive))
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req renewRequest
	if !h.decode(w, r, &req) {
		return
	}
	years, err := models.ParseYears(req.Years)
	if err != nil {
		h.writeError(w, r, "renew", err)
		return
	}
	payment, err := req.toPayment()
	if err != nil {
		h.writeError(w, r, "renew", err)
		return
	}
	res, err := h.registry.Renew(r.Context(), service.RenewRequest{
		Symbol:  symbol,
		Years:   years,
		Payment: payment,
	})
	if err != nil {
		h.writeError(w, r, "renew", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPaidResponse(res))
}

func (h *Handler) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req updateAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := req.toPayment()
	if err != nil {
		h.writeError(w, r, "update_asset", err)
		return
	}
	res, err := h.registry.UpdateAsset(r.Context(), service.UpdateAssetRequest{
		Symbol:          symbol,
		Mint:            req.Mint,
		MetadataAccount: req.MetadataAccount,
		Payment:         payment,
	})
	if err != nil {
		h.writeError(w, r, "update_asset", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPaidResponse(res))
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.registry.Transfer(r.Context(), symbol, req.NewOwner)
	if err != nil {
		h.writeError(w, r, "transfer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSymbolResponse(rec, ""))
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req claimRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, claimType, err := h.registry.Claim(r.Context(), service.ClaimRequest{
		Symbol:          symbol,
		MetadataAccount: req.MetadataAccount,
		Holding:         req.Holding,
	})
	if err != nil {
		h.writeError(w, r, "claim", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claimResponse{
		Record:    toSymbolResponse(rec, ""),
		ClaimType: claimType,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.registry.VerifyOrClose(r.Context(), symbol, req.MetadataAccount)
	if err != nil {
		h.writeError(w, r, "verify_or_close", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCloseResponse(res))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	res, err := h.registry.Cancel(r.Context(), symbol)
	if err != nil {
		h.writeError(w, r, "cancel", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCloseResponse(res))
}

func (h *Handler) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	var req adminUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.registry.AdminUpdate(r.Context(), service.AdminUpdateRequest{
		Symbol:    symbol,
		NewOwner:  req.NewOwner,
		NewMint:   req.NewMint,
		NewExpiry: req.NewExpiry,
	})
	if err != nil {
		h.writeError(w, r, "admin_update", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSymbolResponse(rec, ""))
}

func (h *Handler) handleAdminClose(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}
	res, err := h.registry.AdminClose(r.Context(), symbol)
	if err != nil {
		h.writeError(w, r, "admin_close", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCloseResponse(res))
}
