package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	dErrors "tns/pkg/domain-errors"
)

// AddressLength is the byte length of every ledger address.
const AddressLength = 32

// Address identifies an account, asset, program or derived record.
// Its textual form is base58.
type Address [AddressLength]byte

// SystemAddress is the all-zero null address.
var SystemAddress Address

// ParseAddress decodes a base58 address. Empty input and wrong-length
// payloads are rejected as invalid input.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "address is not valid base58")
	}
	if len(raw) != AddressLength {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("address must decode to %d bytes, got %d", AddressLength, len(raw)))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies b into an Address. b must be 32 bytes.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "address must be 32 bytes")
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// DeriveAddress hashes a namespace tag and seeds into a deterministic address.
// The same (tag, seeds) always yields the same address, and distinct tags
// never share a keyspace in practice.
func DeriveAddress(tag string, seeds ...[]byte) Address {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(tag))
	for _, s := range seeds {
		h.Write(s)
	}
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether a is the system address.
func (a Address) IsZero() bool {
	return a == SystemAddress
}

func (a Address) Bytes() []byte {
	return bytes.Clone(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the address as raw bytes.
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

// Scan reads an address stored as raw bytes.
func (a *Address) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan address: unexpected type %T", src)
	}
	parsed, err := AddressFromBytes(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
