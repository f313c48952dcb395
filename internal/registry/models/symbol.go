package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// State is a record's lifecycle state at a point in time.
type State string

const (
	StateActive    State = "active"
	StateGrace     State = "grace"
	StateAbandoned State = "abandoned"
)

// SymbolRecord binds a case-sensitive symbol to an asset for a lease period.
type SymbolRecord struct {
	Address      domain.Address
	Symbol       string
	Mint         domain.Address
	Owner        domain.Address
	RegisteredAt time.Time
	ExpiresAt    time.Time
	Deposit      uint64
}

// SymbolAddress derives the record address for an exact symbol.
func SymbolAddress(symbol string) domain.Address {
	return domain.DeriveAddress(NamespaceToken, []byte(symbol))
}

// ValidateSymbol enforces the byte length bound and requires UTF-8 text
// without NUL. Any other characters are allowed; the metadata match decides
// what a valid ticker looks like.
func ValidateSymbol(symbol string) error {
	if len(symbol) == 0 || len(symbol) > MaxSymbolLength {
		return dErrors.New(CodeInvalidSymbolLength,
			fmt.Sprintf("symbol must be 1..%d bytes, got %d", MaxSymbolLength, len(symbol)))
	}
	if !utf8.ValidString(symbol) || strings.ContainsRune(symbol, 0) {
		return dErrors.New(CodeInvalidSymbol, "symbol must be valid UTF-8 without NUL bytes")
	}
	return nil
}

// ValidateYears checks years is within 1..MaxYears.
func ValidateYears(years uint8) error {
	if years == 0 {
		return dErrors.New(CodeInvalidYears, "years must be at least 1")
	}
	if years > MaxYears {
		return dErrors.New(CodeExceedsMaxYears, fmt.Sprintf("years must be at most %d", MaxYears))
	}
	return nil
}

// ParseYears narrows a wire value to a lease length, reporting out-of-range
// input with the same codes as ValidateYears.
func ParseYears(n int64) (uint8, error) {
	if n < 1 {
		return 0, dErrors.New(CodeInvalidYears, "years must be at least 1")
	}
	if n > MaxYears {
		return 0, dErrors.New(CodeExceedsMaxYears, fmt.Sprintf("years must be at most %d", MaxYears))
	}
	return uint8(n), nil
}

// LeaseLength is years expressed as a duration.
func LeaseLength(years uint8) time.Duration {
	return time.Duration(years) * Year
}

func (r *SymbolRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *SymbolRecord) IsInGracePeriod(now time.Time) bool {
	return r.IsExpired(now) && !now.After(r.GraceEndsAt())
}

func (r *SymbolRecord) IsAbandoned(now time.Time) bool {
	return now.After(r.GraceEndsAt())
}

func (r *SymbolRecord) GraceEndsAt() time.Time {
	return r.ExpiresAt.Add(GracePeriod)
}

func (r *SymbolRecord) StateAt(now time.Time) State {
	switch {
	case r.IsInGracePeriod(now):
		return StateGrace
	case r.IsAbandoned(now):
		return StateAbandoned
	default:
		return StateActive
	}
}

// Renew extends the expiry by years from the current expiry. The result may
// not reach past now + MaxYears.
func (r *SymbolRecord) Renew(years uint8, now time.Time) error {
	next := r.ExpiresAt.Add(LeaseLength(years))
	if next.After(now.Add(LeaseLength(MaxYears))) {
		return dErrors.New(CodeExceedsMaxYears, "renewal would extend past the maximum lease")
	}
	r.ExpiresAt = next
	return nil
}
