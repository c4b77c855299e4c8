package domain

import (
	"time"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
)

// Schema is the token standard a contract implements.
type Schema string

// Network is the chain a contract is deployed on.
type Network string

const (
	SchemaERC721  Schema = "ERC721"
	SchemaERC1155 Schema = "ERC1155"

	NetworkAvalanche Network = "Avalanche"
)

func (s Schema) String() string  { return string(s) }
func (n Network) String() string { return string(n) }

// ParseSchema resolves the canonical name of a schema.
func ParseSchema(raw string) (Schema, error) {
	switch Schema(raw) {
	case SchemaERC721, SchemaERC1155:
		return Schema(raw), nil
	}
	return "", apperrors.Internalf("unknown schema: %s", raw)
}

// ParseNetwork resolves the canonical name of a network.
func ParseNetwork(raw string) (Network, error) {
	switch Network(raw) {
	case NetworkAvalanche:
		return Network(raw), nil
	}
	return "", apperrors.Internalf("unknown network: %s", raw)
}

// Contract is an on-chain token contract owned by a wallet.
// Contracts are immutable once created.
type Contract struct {
	Address       ContractAddress
	WalletAddress WalletAddress
	Schema        Schema
	Network       Network
	ABI           string
	CreatedAt     time.Time
}

// NewContract registers an ERC-721 contract on Avalanche.
func NewContract(address ContractAddress, walletAddress WalletAddress, abi string, now time.Time) *Contract {
	return &Contract{
		Address:       address,
		WalletAddress: walletAddress,
		Schema:        SchemaERC721,
		Network:       NetworkAvalanche,
		ABI:           abi,
		CreatedAt:     now,
	}
}
