package models

import (
	"fmt"

	dErrors "tns/pkg/domain-errors"
)

// Wire error codes. Callers branch on these exact strings.
const (
	// authorization
	CodeUnauthorized          dErrors.Code = "Unauthorized"
	CodeNotTokenAuthority     dErrors.Code = "NotTokenAuthority"
	CodeAdminOnlyRegistration dErrors.Code = "AdminOnlyRegistration"
	CodeSymbolReserved        dErrors.Code = "SymbolReserved"

	// validation
	CodeInvalidYears           dErrors.Code = "InvalidYears"
	CodeExceedsMaxYears        dErrors.Code = "ExceedsMaxYears"
	CodeInvalidMetadata        dErrors.Code = "InvalidMetadata"
	CodeMetadataSymbolMismatch dErrors.Code = "MetadataSymbolMismatch"
	CodeInvalidSymbolLength    dErrors.Code = "InvalidSymbolLength"
	CodeInvalidSymbol          dErrors.Code = "InvalidSymbol"
	CodeInvalidOwner           dErrors.Code = "InvalidOwner"
	CodeInvalidMint            dErrors.Code = "InvalidMint"
	CodePlatformFeeExceedsMax  dErrors.Code = "PlatformFeeExceedsMax"

	// state conflict
	CodeAlreadyOwner     dErrors.Code = "AlreadyOwner"
	CodeSameOwner        dErrors.Code = "SameOwner"
	CodeSameMint         dErrors.Code = "SameMint"
	CodeAlreadyInUse     dErrors.Code = "AlreadyInUse"
	CodeNoDriftDetected  dErrors.Code = "NoDriftDetected"
	CodeNotYetCancelable dErrors.Code = "NotYetCancelable"
	CodeSymbolNotExpired dErrors.Code = "SymbolNotExpired"

	// lifecycle of a record
	CodeSymbolExpired             dErrors.Code = "SymbolExpired"
	CodeCannotUpdateExpiredSymbol dErrors.Code = "CannotUpdateExpiredSymbol"

	// economic
	CodeSlippageExceeded  dErrors.Code = "SlippageExceeded"
	CodeInsufficientFunds dErrors.Code = "InsufficientFunds"
	CodeStalePriceFeed    dErrors.Code = "StalePriceFeed"
	CodeInvalidPriceFeed  dErrors.Code = "InvalidPriceFeed"
	CodePriceFeedMismatch dErrors.Code = "PriceFeedMismatch"
	CodeQuoteInUse        dErrors.Code = "QuoteInUse"

	// lifecycle
	CodePaused       dErrors.Code = "Paused"
	CodeInvalidPhase dErrors.Code = "InvalidPhase"
)

func ErrUnauthorized(msg string) error {
	return dErrors.New(CodeUnauthorized, msg)
}

func ErrSlippage(cost, maxCost uint64) error {
	return dErrors.New(CodeSlippageExceeded, fmt.Sprintf("cost %d exceeds max_cost %d", cost, maxCost))
}

func ErrPaused() error {
	return dErrors.New(CodePaused, "registry is paused")
}
