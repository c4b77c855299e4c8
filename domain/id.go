// Package domain holds the core entities of the token lifecycle:
// contracts, tokens and the identifiers that address them.
package domain

import "github.com/google/uuid"

// ContractAddress identifies a deployed contract. The raw string is opaque;
// construction never validates format beyond non-emptiness.
type ContractAddress string

// TokenID identifies a token within a contract.
type TokenID string

// WalletAddress identifies a wallet.
type WalletAddress string

func (a ContractAddress) String() string { return string(a) }
func (t TokenID) String() string         { return string(t) }
func (w WalletAddress) String() string   { return string(w) }

// GenerateID returns a random UUID for identifiers that are not supplied
// externally.
func GenerateID() string {
	return uuid.NewString()
}
