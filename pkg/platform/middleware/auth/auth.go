package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"tns/pkg/domain"
	"tns/pkg/requestcontext"
)

// HeaderCosigner carries additional signer tokens, one per header value.
const HeaderCosigner = "X-Cosigner-Token"

// SignerValidator verifies a signer token and returns the address it proves.
type SignerValidator interface {
	ValidateToken(tokenString string) (domain.Address, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// Signers attaches the bearer token's address as the request signer and every
// X-Cosigner-Token address as a co-signer. Requests without a bearer token pass
// through unsigned; a present but invalid token is rejected.
func Signers(validator SignerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				token, ok := strings.CutPrefix(authHeader, "Bearer ")
				if !ok {
					writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing or invalid Authorization header")
					return
				}
				signer, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid signer token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
					return
				}
				ctx = requestcontext.WithSigner(ctx, signer)
			}

			for _, token := range r.Header.Values(HeaderCosigner) {
				cosigner, err := validator.ValidateToken(strings.TrimSpace(token))
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid cosigner token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired cosigner token")
					return
				}
				ctx = requestcontext.WithCosigner(ctx, cosigner)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSigner rejects requests that carry no verified signer.
func RequireSigner(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Signer(ctx).IsZero() {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing or invalid Authorization header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
