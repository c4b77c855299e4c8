package ethereum

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"math/big"
	"strings"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/domain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Canvas is the ledger client for the token contract. Each call binds the
// contract from its stored ABI, so one client serves every registered
// contract.
type Canvas struct {
	cli        *ethclient.Client
	privateKey *ecdsa.PrivateKey
	logger     *slog.Logger
}

// NewCanvas creates a ledger client signing with the given raw hex secret.
func NewCanvas(rawSecret string, ethereumURL string, logger *slog.Logger) (*Canvas, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(rawSecret, "0x"))
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	cli, err := ethclient.Dial(ethereumURL)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Canvas{cli: cli, privateKey: privateKey, logger: logger}, nil
}

func (c *Canvas) bound(contract *domain.Contract) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(contract.ABI))
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	address := common.HexToAddress(string(contract.Address))
	return bind.NewBoundContract(address, parsed, c.cli, c.cli, c.cli), nil
}

func (c *Canvas) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	chainID, err := c.cli.ChainID(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.privateKey, chainID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	opts.GasLimit = gasLimit
	opts.GasPrice = gasPrice
	opts.Context = ctx
	return opts, nil
}

// Name reads the contract's name.
func (c *Canvas) Name(ctx context.Context, contract *domain.Contract) (string, error) {
	bc, err := c.bound(contract)
	if err != nil {
		return "", err
	}
	var out []interface{}
	if err := bc.Call(&bind.CallOpts{Context: ctx}, &out, "name"); err != nil {
		return "", apperrors.Wrap(err)
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// OwnerOf reads the authoritative owner of a token.
func (c *Canvas) OwnerOf(ctx context.Context, contract *domain.Contract, tokenID domain.TokenID) (domain.WalletAddress, error) {
	id, ok := new(big.Int).SetString(string(tokenID), 10)
	if !ok {
		return "", apperrors.Internalf("token id %s is not numeric", tokenID)
	}
	bc, err := c.bound(contract)
	if err != nil {
		return "", err
	}
	var out []interface{}
	if err := bc.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", id); err != nil {
		return "", apperrors.Wrap(err)
	}
	owner := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return domain.WalletAddress(strings.ToLower(owner.Hex())), nil
}

// TokenIDOf reads the token id assigned to a metadata hash.
func (c *Canvas) TokenIDOf(ctx context.Context, contract *domain.Contract, ipfsHash string) (domain.TokenID, error) {
	bc, err := c.bound(contract)
	if err != nil {
		return "", err
	}
	var out []interface{}
	if err := bc.Call(&bind.CallOpts{Context: ctx}, &out, "tokenIdOf", ipfsHash); err != nil {
		return "", apperrors.Wrap(err)
	}
	id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return domain.TokenID(id.String()), nil
}

// Mint issues a token for the metadata hash to the contract's wallet and
// blocks until the transaction is mined.
func (c *Canvas) Mint(ctx context.Context, contract *domain.Contract, ipfsHash string) error {
	bc, err := c.bound(contract)
	if err != nil {
		return err
	}
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return err
	}
	to := common.HexToAddress(string(contract.WalletAddress))
	tx, err := bc.Transact(opts, "mint", to, ipfsHash)
	if err != nil {
		return apperrors.Wrap(err)
	}
	return c.waitMined(ctx, tx, "mint")
}

// Transfer moves a token between wallets and blocks until the transaction
// is mined.
func (c *Canvas) Transfer(ctx context.Context, contract *domain.Contract, token *domain.Token, to domain.WalletAddress) error {
	id, ok := new(big.Int).SetString(string(token.TokenID), 10)
	if !ok {
		return apperrors.Internalf("token id %s is not numeric", token.TokenID)
	}
	bc, err := c.bound(contract)
	if err != nil {
		return err
	}
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return err
	}
	from := common.HexToAddress(string(contract.WalletAddress))
	tx, err := bc.Transact(opts, "safeTransferFrom", from, common.HexToAddress(string(to)), id)
	if err != nil {
		return apperrors.Wrap(err)
	}
	return c.waitMined(ctx, tx, "safeTransferFrom")
}

func (c *Canvas) waitMined(ctx context.Context, tx *types.Transaction, method string) error {
	receipt, err := bind.WaitMined(ctx, c.cli, tx)
	if err != nil {
		return apperrors.Wrap(err)
	}
	c.logger.Info("transaction mined",
		"method", method,
		"tx", receipt.TxHash.Hex(),
		"block", receipt.BlockNumber,
		"status", receipt.Status,
	)
	if receipt.Status != types.ReceiptStatusSuccessful {
		return apperrors.Internalf("%s transaction %s reverted", method, receipt.TxHash.Hex())
	}
	return nil
}
