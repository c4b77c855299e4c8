package domain

import "time"

// Token is a minted NFT. Composite identity is (Address, TokenID).
//
// PriceEth is present iff the token is currently listed for sale; a nil
// price means the token is held as stock by its owner.
type Token struct {
	Address       ContractAddress
	TokenID       TokenID
	WorkID        string
	OwnerAddress  WalletAddress
	IpfsImageHash string
	Name          string
	Description   string
	PriceEth      *float64
	CreatedAt     time.Time
}

// NewToken creates a freshly minted token held by the contract's wallet.
func NewToken(
	address ContractAddress,
	tokenID TokenID,
	workID string,
	ipfsImageHash string,
	name string,
	description string,
	owner WalletAddress,
	now time.Time,
) *Token {
	return &Token{
		Address:       address,
		TokenID:       tokenID,
		WorkID:        workID,
		OwnerAddress:  owner,
		IpfsImageHash: ipfsImageHash,
		Name:          name,
		Description:   description,
		PriceEth:      nil,
		CreatedAt:     now,
	}
}

// UpdatePrice lists the token for sale at the given price.
func (t *Token) UpdatePrice(priceEth float64) {
	t.PriceEth = &priceEth
}

// ClearPrice delists the token.
func (t *Token) ClearPrice() {
	t.PriceEth = nil
}

// Transfer moves ownership to another wallet and clears any listing.
func (t *Token) Transfer(to WalletAddress) {
	t.OwnerAddress = to
	t.PriceEth = nil
}

// IsListed reports whether the token has an active sell order.
func (t *Token) IsListed() bool {
	return t.PriceEth != nil
}
