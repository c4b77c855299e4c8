// Package application composes the storage layer with the ledger, the
// content-addressable store and the marketplace into the token lifecycle
// operations: mint, sell, transfer and reconciliation.
package application

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/aws"
	"github.com/akihokurino/canvas-nft-generator/domain"
	"github.com/akihokurino/canvas-nft-generator/ipfs"
	"github.com/akihokurino/canvas-nft-generator/opensea"
)

// ContractStore reads contract records.
type ContractStore interface {
	Get(ctx context.Context, address domain.ContractAddress) (*domain.Contract, error)
	GetLatestByWalletAddressAndSchema(ctx context.Context, walletAddress domain.WalletAddress, schema domain.Schema) (*domain.Contract, error)
	GetAll(ctx context.Context) ([]*domain.Contract, error)
}

// TokenStore reads and writes token records. It is the single write path
// for tokens; the orchestrator never touches storage directly.
type TokenStore interface {
	Get(ctx context.Context, address domain.ContractAddress, tokenID domain.TokenID) (*domain.Token, error)
	Put(ctx context.Context, token *domain.Token) error
	GetAllByContract(ctx context.Context, address domain.ContractAddress) ([]*domain.Token, error)
	ExistsByIpfsImageHash(ctx context.Context, address domain.ContractAddress, ipfsImageHash string) (bool, error)
}

// Ledger is the on-chain contract interface.
type Ledger interface {
	OwnerOf(ctx context.Context, contract *domain.Contract, tokenID domain.TokenID) (domain.WalletAddress, error)
	TokenIDOf(ctx context.Context, contract *domain.Contract, ipfsHash string) (domain.TokenID, error)
	Mint(ctx context.Context, contract *domain.Contract, ipfsHash string) error
	Transfer(ctx context.Context, contract *domain.Contract, token *domain.Token, to domain.WalletAddress) error
}

// Marketplace is the external sell-order service.
type Marketplace interface {
	Invoke(ctx context.Context, req aws.OpenSeaRequest) (*aws.OpenSeaResponse, error)
}

// Uploader stores bytes in the content-addressable store.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name string) (*ipfs.Output, error)
}

// SignedURLProvider exchanges object locations for download URLs.
type SignedURLProvider interface {
	GetSignedURLs(ctx context.Context, gsURLs []string) ([]string, error)
}

// NftApp is the token lifecycle orchestrator. Each operation is one
// sequential chain of external calls followed by at most one storage
// write; failures before the write leave storage untouched. Uploads that
// already happened are not rolled back, since content-addressable uploads
// are idempotent by hash.
type NftApp struct {
	walletAddress domain.WalletAddress
	internalAPI   SignedURLProvider
	ipfsCli       Uploader
	canvas        Ledger
	marketplace   Marketplace
	contractRepo  ContractStore
	tokenRepo     TokenStore
	httpCli       *http.Client
	logger        *slog.Logger
}

// NewNftApp wires the orchestrator. httpCli and logger may be nil to use
// the defaults.
func NewNftApp(
	walletAddress domain.WalletAddress,
	internalAPI SignedURLProvider,
	ipfsCli Uploader,
	canvas Ledger,
	marketplace Marketplace,
	contractRepo ContractStore,
	tokenRepo TokenStore,
	httpCli *http.Client,
	logger *slog.Logger,
) *NftApp {
	if httpCli == nil {
		httpCli = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NftApp{
		walletAddress: walletAddress,
		internalAPI:   internalAPI,
		ipfsCli:       ipfsCli,
		canvas:        canvas,
		marketplace:   marketplace,
		contractRepo:  contractRepo,
		tokenRepo:     tokenRepo,
		httpCli:       httpCli,
		logger:        logger,
	}
}

// Mint issues a token for the work stored at gsPath under the wallet's
// latest ERC-721 contract.
//
// The image-hash lookup is a best-effort guard against double minting, not
// a lock: two concurrent mints of the same work can both pass it before
// either row is written. Reconciliation repairs whatever diverges.
func (a *NftApp) Mint(ctx context.Context, workID string, gsPath string, now time.Time) (bool, error) {
	contract, err := a.contractRepo.GetLatestByWalletAddressAndSchema(ctx, a.walletAddress, domain.SchemaERC721)
	if err != nil {
		return false, err
	}

	urls, err := a.internalAPI.GetSignedURLs(ctx, []string{gsPath})
	if err != nil {
		return false, err
	}
	if len(urls) == 0 {
		return false, apperrors.Internalf("no signed url issued for %s", gsPath)
	}
	data, err := a.fetch(ctx, urls[0])
	if err != nil {
		return false, err
	}

	imageOut, err := a.ipfsCli.Upload(ctx, data, workID)
	if err != nil {
		return false, err
	}
	imageURL := "ipfs://" + imageOut.Hash
	a.logger.Info("image uploaded", "workId", workID, "url", imageURL)

	exists, err := a.tokenRepo.ExistsByIpfsImageHash(ctx, contract.Address, imageURL)
	if err != nil {
		return false, err
	}
	if exists {
		return false, apperrors.BadRequestf("work %s is already minted", workID)
	}

	metadata := opensea.NewMetadata(workID, "canvas nft", imageURL)
	rawMetadata, err := json.Marshal(metadata)
	if err != nil {
		return false, apperrors.Wrap(err)
	}
	metadataOut, err := a.ipfsCli.Upload(ctx, rawMetadata, workID)
	if err != nil {
		return false, err
	}
	a.logger.Info("metadata uploaded", "workId", workID, "url", "ipfs://"+metadataOut.Hash)

	if err := a.canvas.Mint(ctx, contract, metadataOut.Hash); err != nil {
		return false, err
	}
	tokenID, err := a.canvas.TokenIDOf(ctx, contract, metadataOut.Hash)
	if err != nil {
		return false, err
	}

	token := domain.NewToken(
		contract.Address,
		tokenID,
		workID,
		metadata.Image,
		metadata.Name,
		metadata.Description,
		contract.WalletAddress,
		now,
	)
	if err := a.tokenRepo.Put(ctx, token); err != nil {
		return false, err
	}
	return true, nil
}

// Sell places a marketplace sell order and records the confirmed price.
// The marketplace may legitimately settle on a different price than the
// one requested.
func (a *NftApp) Sell(ctx context.Context, address domain.ContractAddress, tokenID domain.TokenID, priceEth float64) (bool, error) {
	_, token, err := a.loadOwned(ctx, address, tokenID)
	if err != nil {
		return false, err
	}
	if priceEth <= 0 {
		return false, apperrors.BadRequestf("price must be positive")
	}

	res, err := a.marketplace.Invoke(ctx, aws.NewOpenSeaSellRequest(address, tokenID, priceEth))
	if err != nil {
		return false, err
	}
	if res.SellResponse == nil {
		return false, apperrors.Internalf("marketplace returned no sell response")
	}
	confirmed, err := strconv.ParseFloat(res.SellResponse.SellPrice, 64)
	if err != nil {
		return false, apperrors.Internalf("marketplace returned invalid price %q", res.SellResponse.SellPrice)
	}

	token.UpdatePrice(confirmed)
	if err := a.tokenRepo.Put(ctx, token); err != nil {
		return false, err
	}
	return true, nil
}

// Transfer moves a token to another wallet on the ledger and clears any
// listing.
func (a *NftApp) Transfer(ctx context.Context, address domain.ContractAddress, tokenID domain.TokenID, to domain.WalletAddress) (bool, error) {
	contract, token, err := a.loadOwned(ctx, address, tokenID)
	if err != nil {
		return false, err
	}

	if err := a.canvas.Transfer(ctx, contract, token, to); err != nil {
		return false, err
	}

	token.Transfer(to)
	if err := a.tokenRepo.Put(ctx, token); err != nil {
		return false, err
	}
	return true, nil
}

// Sync walks every contract and token and overwrites stored state with
// ledger ownership and marketplace pricing. Ledger and marketplace are the
// source of truth; storage is a cache of them. The pass aborts at the
// first external error rather than skipping the offending token.
func (a *NftApp) Sync(ctx context.Context) (bool, error) {
	syncID := domain.GenerateID()
	a.logger.Info("sync started", "syncId", syncID)

	contracts, err := a.contractRepo.GetAll(ctx)
	if err != nil {
		return false, err
	}

	for _, contract := range contracts {
		tokens, err := a.tokenRepo.GetAllByContract(ctx, contract.Address)
		if err != nil {
			return false, err
		}
		for _, token := range tokens {
			owner, err := a.canvas.OwnerOf(ctx, contract, token.TokenID)
			if err != nil {
				return false, err
			}

			res, err := a.marketplace.Invoke(ctx, aws.NewOpenSeaInfoRequest(contract.Address, token.TokenID))
			if err != nil {
				return false, err
			}
			if res.InfoResponse == nil {
				return false, apperrors.Internalf("marketplace returned no info response")
			}
			price, err := strconv.ParseFloat(res.InfoResponse.SellPrice, 64)
			if err != nil {
				return false, apperrors.Internalf("marketplace returned invalid price %q", res.InfoResponse.SellPrice)
			}

			token.OwnerAddress = owner
			if price > 0 {
				token.UpdatePrice(price)
			} else {
				token.ClearPrice()
			}
			if err := a.tokenRepo.Put(ctx, token); err != nil {
				return false, err
			}
		}
		a.logger.Info("contract synced", "syncId", syncID, "contract", contract.Address, "tokens", len(tokens))
	}
	return true, nil
}

// loadOwned loads a contract and token and enforces that the process
// wallet owns the contract and still holds the token.
func (a *NftApp) loadOwned(ctx context.Context, address domain.ContractAddress, tokenID domain.TokenID) (*domain.Contract, *domain.Token, error) {
	contract, err := a.contractRepo.Get(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	token, err := a.tokenRepo.Get(ctx, address, tokenID)
	if err != nil {
		return nil, nil, err
	}
	if contract.WalletAddress != a.walletAddress {
		return nil, nil, apperrors.Forbiddenf("wallet %s does not own contract %s", a.walletAddress, address)
	}
	if token.OwnerAddress != contract.WalletAddress {
		return nil, nil, apperrors.Forbiddenf("token %s#%s is not held by the contract wallet", address, tokenID)
	}
	return contract, token, nil
}

func (a *NftApp) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	res, err := a.httpCli.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, apperrors.Internalf("fetch %s failed: status %d", url, res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return data, nil
}
