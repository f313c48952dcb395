package models

import (
	"time"

	"github.com/google/uuid"

	"tns/pkg/domain"
)

// EventType names a registry event on the wire.
type EventType string

const (
	EventProtocolInitialized  EventType = "ProtocolInitialized"
	EventConfigUpdated        EventType = "ConfigUpdated"
	EventSymbolRegistered     EventType = "SymbolRegistered"
	EventSymbolSeeded         EventType = "SymbolSeeded"
	EventSymbolClaimed        EventType = "SymbolClaimed"
	EventSymbolRenewed        EventType = "SymbolRenewed"
	EventMintUpdated          EventType = "MintUpdated"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
	EventOwnershipClaimed     EventType = "OwnershipClaimed"
	EventSymbolCanceled       EventType = "SymbolCanceled"
	EventSymbolDriftDetected  EventType = "SymbolDriftDetected"
	EventSymbolUpdatedByAdmin EventType = "SymbolUpdatedByAdmin"
	EventSymbolClosedByAdmin  EventType = "SymbolClosedByAdmin"
)

// Event is emitted inside the transaction of the operation it describes.
// Optional fields are nil or zero when they do not apply.
type Event struct {
	Type           EventType       `json:"type"`
	Symbol         string          `json:"symbol,omitempty"`
	Actor          domain.Address  `json:"actor"`
	Mint           *domain.Address `json:"mint,omitempty"`
	PreviousMint   *domain.Address `json:"previous_mint,omitempty"`
	Owner          *domain.Address `json:"owner,omitempty"`
	PreviousOwner  *domain.Address `json:"previous_owner,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	Years          uint8           `json:"years,omitempty"`
	PaymentMethod  PaymentMethod   `json:"payment_method,omitempty"`
	Cost           uint64          `json:"cost,omitempty"`
	PlatformFee    uint64          `json:"platform_fee,omitempty"`
	Reward         uint64          `json:"reward,omitempty"`
	ClaimType      ClaimType       `json:"claim_type,omitempty"`
	MetadataSymbol string          `json:"metadata_symbol,omitempty"`
	Phase          Phase           `json:"phase,omitempty"`
	Paused         *bool           `json:"paused,omitempty"`
	RequestID      string          `json:"request_id,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// AddrPtr returns a pointer to a copy of a.
func AddrPtr(a domain.Address) *domain.Address {
	return &a
}

// OutboxEntry is an event persisted for relay.
type OutboxEntry struct {
	ID        uuid.UUID
	Seq       int64
	Type      EventType
	Symbol    string
	Payload   []byte
	CreatedAt time.Time
}
