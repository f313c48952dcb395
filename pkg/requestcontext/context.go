// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values and services read them, so services never import net/http.
//
//	signer := requestcontext.Signer(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithSigner(ctx, admin)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"slices"
	"time"

	"tns/pkg/domain"
)

type (
	signerKey      struct{}
	cosignersKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeySigner      = signerKey{}
	ContextKeyCosigners   = cosignersKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Signer set
// -----------------------------------------------------------------------------

// Signer returns the verified address that signed the request, or the system
// address when the request is unsigned.
func Signer(ctx context.Context) domain.Address {
	if a, ok := ctx.Value(ContextKeySigner).(domain.Address); ok {
		return a
	}
	return domain.SystemAddress
}

// WithSigner injects the primary signer.
func WithSigner(ctx context.Context, signer domain.Address) context.Context {
	return context.WithValue(ctx, ContextKeySigner, signer)
}

// Cosigners returns the additional verified signers attached to the request.
func Cosigners(ctx context.Context) []domain.Address {
	if a, ok := ctx.Value(ContextKeyCosigners).([]domain.Address); ok {
		return a
	}
	return nil
}

// WithCosigner appends a verified co-signer.
func WithCosigner(ctx context.Context, cosigner domain.Address) context.Context {
	next := append(slices.Clone(Cosigners(ctx)), cosigner)
	return context.WithValue(ctx, ContextKeyCosigners, next)
}

// HasSigned reports whether addr is the signer or one of the co-signers.
func HasSigned(ctx context.Context, addr domain.Address) bool {
	if addr.IsZero() {
		return false
	}
	return Signer(ctx) == addr || slices.Contains(Cosigners(ctx), addr)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Workers use it to keep one "now" across a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
