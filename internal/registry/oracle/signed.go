package oracle

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// QuoteIssuer is the issuer claim stamped on signed quotes.
const QuoteIssuer = "tns-oracle"

type quoteClaims struct {
	Feed        string `json:"feed"`
	Price       int64  `json:"price"`
	Exponent    int32  `json:"expo"`
	Confidence  uint64 `json:"conf"`
	PublishTime int64  `json:"publish_time"`
	jwt.RegisteredClaims
}

// Verifier parses quotes signed by a single oracle publisher key.
type Verifier struct {
	publisher ed25519.PublicKey
	parser    *jwt.Parser
}

func NewVerifier(publisher ed25519.PublicKey) *Verifier {
	return &Verifier{
		publisher: publisher,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
			jwt.WithIssuer(QuoteIssuer),
		),
	}
}

// Parse verifies the signature of a signed quote and decodes it.
// Freshness and feed checks are left to Quote.Verify.
func (v *Verifier) Parse(signed string) (*Quote, error) {
	if signed == "" {
		return nil, dErrors.New(models.CodeInvalidPriceFeed, "price quote is required")
	}
	claims := &quoteClaims{}
	_, err := v.parser.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return v.publisher, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, dErrors.Wrap(err, models.CodeInvalidPriceFeed, "price quote signature is invalid")
		}
		return nil, dErrors.Wrap(err, models.CodeInvalidPriceFeed, "price quote is malformed")
	}

	feed, err := domain.ParseAddress(claims.Feed)
	if err != nil {
		return nil, dErrors.Wrap(err, models.CodeInvalidPriceFeed, "price quote feed is invalid")
	}
	return &Quote{
		Feed:        feed,
		Price:       claims.Price,
		Exponent:    claims.Exponent,
		Confidence:  claims.Confidence,
		PublishedAt: time.Unix(claims.PublishTime, 0).UTC(),
	}, nil
}

// Sign produces a signed quote. Used by the feed publisher and in tests.
func Sign(key ed25519.PrivateKey, q Quote) (string, error) {
	claims := quoteClaims{
		Feed:        q.Feed.String(),
		Price:       q.Price,
		Exponent:    q.Exponent,
		Confidence:  q.Confidence,
		PublishTime: q.PublishedAt.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   QuoteIssuer,
			IssuedAt: jwt.NewNumericDate(q.PublishedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
}
