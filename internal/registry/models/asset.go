package models

import "tns/pkg/domain"

// Well-known program addresses that own asset and metadata accounts.
var (
	TokenProgram     = domain.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022Program = domain.MustParseAddress("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	MetadataProgram  = domain.MustParseAddress("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Asset is the read-only descriptor of a fungible asset (a mint).
// Assets owned by Token2022Program carry their metadata inline; assets owned
// by TokenProgram keep it in a linked record at LinkedMetadataAddress(mint).
type Asset struct {
	Mint          domain.Address
	Program       domain.Address
	MintAuthority *domain.Address
	Supply        uint64
	Decimals      uint8
	Embedded      *Metadata
}

// Metadata is the mutable descriptor carrying the human-assigned symbol.
type Metadata struct {
	Address         domain.Address
	Mint            domain.Address
	UpdateAuthority *domain.Address
	Name            string
	Symbol          string
	URI             string
}

// Holding is a balance of one asset held by one owner.
type Holding struct {
	Address domain.Address
	Owner   domain.Address
	Mint    domain.Address
	Amount  uint64
}

// LinkedMetadataAddress is the deterministic address of a mint's linked metadata.
func LinkedMetadataAddress(mint domain.Address) domain.Address {
	return domain.DeriveAddress(NamespaceMetadata, MetadataProgram.Bytes(), mint.Bytes())
}

// ClaimType records which eligibility path won a claim.
type ClaimType string

const (
	ClaimUpdateAuthority ClaimType = "update_authority"
	ClaimMintAuthority   ClaimType = "mint_authority"
	ClaimMajorityHolder  ClaimType = "majority_holder"
)
