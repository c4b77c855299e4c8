// Package ethereum provides the wallet and the on-chain ledger client.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/domain"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Gas settings are fixed; the Avalanche C-Chain floor price leaves no
// reason to estimate per call.
const gasLimit = uint64(8000000)

var gasPrice = big.NewInt(25000000000) // 25 nAVAX

// Wallet is the process-owned signing wallet.
type Wallet struct {
	Address       common.Address
	privateKey    *ecdsa.PrivateKey
	provider      *ethclient.Client
	internalToken string
}

// NewWallet derives the wallet from its raw hex secret and connects the
// provider.
func NewWallet(rawSecret string, ethereumURL string, internalToken string) (*Wallet, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(rawSecret, "0x"))
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	provider, err := ethclient.Dial(ethereumURL)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &Wallet{
		Address:       crypto.PubkeyToAddress(privateKey.PublicKey),
		privateKey:    privateKey,
		provider:      provider,
		internalToken: internalToken,
	}, nil
}

// WalletAddress returns the wallet's domain identifier in the canonical
// lowercase hex form used throughout storage.
func (w *Wallet) WalletAddress() domain.WalletAddress {
	return domain.WalletAddress(strings.ToLower(w.Address.Hex()))
}

// Balance returns the wallet's current balance in ether.
func (w *Wallet) Balance(ctx context.Context) (float64, error) {
	wei, err := w.provider.BalanceAt(ctx, w.Address, nil)
	if err != nil {
		return 0, apperrors.Wrap(err)
	}
	return WeiToEther(wei), nil
}

// Verify checks a personal-sign signature over the internal token against
// the wallet's own address. Any failure is Unauthorized.
func (w *Wallet) Verify(signature string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return apperrors.Unauthorizedf("invalid signature")
	}
	// Normalize the recovery id from its legacy 27/28 form.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte{}, sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(w.internalToken)), sig)
	if err != nil {
		return apperrors.Unauthorizedf("invalid signature")
	}
	if crypto.PubkeyToAddress(*pub) != w.Address {
		return apperrors.Unauthorizedf("signer mismatch")
	}
	return nil
}

var weiPerEther = new(big.Float).SetFloat64(1e18)

// WeiToEther converts a wei amount to ether.
func WeiToEther(wei *big.Int) float64 {
	ether, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return ether
}

// EtherToWei converts an ether amount to wei, rounding to the nearest wei.
func EtherToWei(ether float64) *big.Int {
	f := new(big.Float).Mul(new(big.Float).SetFloat64(ether), weiPerEther)
	f.Add(f, new(big.Float).SetFloat64(0.5))
	wei, _ := f.Int(nil)
	return wei
}
