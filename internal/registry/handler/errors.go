package handler

import (
	"net/http"

	"tns/internal/registry/models"
	dErrors "tns/pkg/domain-errors"
)

var registryStatus = map[dErrors.Code]int{
	models.CodeUnauthorized:          http.StatusForbidden,
	models.CodeNotTokenAuthority:     http.StatusForbidden,
	models.CodeAdminOnlyRegistration: http.StatusForbidden,
	models.CodeSymbolReserved:        http.StatusForbidden,

	models.CodeInvalidYears:           http.StatusBadRequest,
	models.CodeExceedsMaxYears:        http.StatusBadRequest,
	models.CodeInvalidMetadata:        http.StatusBadRequest,
	models.CodeMetadataSymbolMismatch: http.StatusBadRequest,
	models.CodeInvalidSymbolLength:    http.StatusBadRequest,
	models.CodeInvalidSymbol:          http.StatusBadRequest,
	models.CodeInvalidOwner:           http.StatusBadRequest,
	models.CodeInvalidMint:            http.StatusBadRequest,
	models.CodePlatformFeeExceedsMax:  http.StatusBadRequest,
	models.CodeInvalidPhase:           http.StatusBadRequest,

	models.CodeAlreadyOwner:              http.StatusConflict,
	models.CodeSameOwner:                 http.StatusConflict,
	models.CodeSameMint:                  http.StatusConflict,
	models.CodeAlreadyInUse:              http.StatusConflict,
	models.CodeNoDriftDetected:           http.StatusConflict,
	models.CodeNotYetCancelable:          http.StatusConflict,
	models.CodeSymbolNotExpired:          http.StatusConflict,
	models.CodeSymbolExpired:             http.StatusConflict,
	models.CodeCannotUpdateExpiredSymbol: http.StatusConflict,
	models.CodePaused:                    http.StatusServiceUnavailable,

	models.CodeSlippageExceeded:  http.StatusPreconditionFailed,
	models.CodeInsufficientFunds: http.StatusPaymentRequired,
	models.CodeStalePriceFeed:    http.StatusUnprocessableEntity,
	models.CodeInvalidPriceFeed:  http.StatusUnprocessableEntity,
	models.CodePriceFeedMismatch: http.StatusUnprocessableEntity,
	models.CodeQuoteInUse:        http.StatusConflict,
}

// statusFor maps registry wire codes to HTTP statuses.
func statusFor(code dErrors.Code) (int, bool) {
	status, ok := registryStatus[code]
	return status, ok
}
