//go:build e2e

// Package e2e contains end-to-end integration tests against a real
// DynamoDB table. Run with: go test -tags=e2e -v ./e2e/...
//
// The table must already exist with the cng-contract layout, including the
// four secondary indexes, in the account selected by the ambient AWS
// configuration.
package e2e

import (
	"context"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/ddb"
	"github.com/akihokurino/canvas-nft-generator/domain"
)

func newClient(t *testing.T) *dynamodb.Client {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

func TestContractAndTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t)
	contracts := ddb.NewContractRepository(cli)
	tokens := ddb.NewTokenRepository(cli)

	// Unique per run so repeated runs do not collide.
	address := domain.ContractAddress("0xe2e-" + uuid.NewString())
	wallet := domain.WalletAddress("0xwallet-e2e")

	contract := domain.NewContract(address, wallet, "[]", time.Now().UTC().Truncate(time.Second))
	if err := contracts.Put(ctx, contract); err != nil {
		t.Fatalf("put contract: %v", err)
	}

	got, err := contracts.Get(ctx, address)
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	if got.WalletAddress != wallet || got.Schema != domain.SchemaERC721 {
		t.Errorf("contract did not round trip: %#v", got)
	}

	for i, id := range []domain.TokenID{"1", "2", "3"} {
		token := domain.NewToken(
			address, id, "work-"+string(id),
			"ipfs://image-"+string(id), "work-"+string(id), "canvas nft",
			wallet, time.Now().UTC().Truncate(time.Second),
		)
		if i == 1 {
			token.UpdatePrice(1.4)
		}
		if err := tokens.Put(ctx, token); err != nil {
			t.Fatalf("put token %s: %v", id, err)
		}
	}

	pager, err := ddb.NewPager(nil, nil, awssdk.Int32(2), nil, 10)
	if err != nil {
		t.Fatalf("new pager: %v", err)
	}
	page, err := tokens.GetByContractWithPager(ctx, address, pager)
	if err != nil {
		t.Fatalf("page tokens: %v", err)
	}
	if len(page.Items) != 2 || !page.HasNext {
		t.Fatalf("expected a full first window with next page, got %d items hasNext=%v", len(page.Items), page.HasNext)
	}

	cursor := page.Items[1].Cursor.Encode()
	pager, err = ddb.NewPager(awssdk.String(cursor), nil, awssdk.Int32(2), nil, 10)
	if err != nil {
		t.Fatalf("new pager: %v", err)
	}
	page, err = tokens.GetByContractWithPager(ctx, address, pager)
	if err != nil {
		t.Fatalf("page tokens after cursor: %v", err)
	}
	if len(page.Items) != 1 || page.HasNext {
		t.Errorf("expected the final window, got %d items hasNext=%v", len(page.Items), page.HasNext)
	}

	exists, err := tokens.ExistsByIpfsImageHash(ctx, address, "ipfs://image-2")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("expected the minted image hash to be found")
	}

	stock, err := tokens.GetStockByContractWithPager(ctx, wallet, address, mustPager(t))
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if len(stock.Items) != 2 {
		t.Errorf("expected 2 stock tokens, got %d", len(stock.Items))
	}

	orders, err := tokens.GetSellOrderByContractWithPager(ctx, wallet, address, mustPager(t))
	if err != nil {
		t.Fatalf("sell orders: %v", err)
	}
	if len(orders.Items) != 1 {
		t.Errorf("expected 1 listed token, got %d", len(orders.Items))
	}

	if _, err := tokens.Get(ctx, address, "404"); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found for an absent token, got %v", err)
	}
}

func TestGetLatestByWalletAddressAndSchema(t *testing.T) {
	ctx := context.Background()
	contracts := ddb.NewContractRepository(newClient(t))

	wallet := domain.WalletAddress("0xwallet-e2e-" + uuid.NewString())

	older := domain.NewContract(domain.ContractAddress("0xe2e-"+uuid.NewString()), wallet, "[]", time.Now().UTC().Add(-time.Hour).Truncate(time.Second))
	newer := domain.NewContract(domain.ContractAddress("0xe2e-"+uuid.NewString()), wallet, "[]", time.Now().UTC().Truncate(time.Second))
	for _, c := range []*domain.Contract{older, newer} {
		if err := contracts.Put(ctx, c); err != nil {
			t.Fatalf("put contract: %v", err)
		}
	}

	got, err := contracts.GetLatestByWalletAddressAndSchema(ctx, wallet, domain.SchemaERC721)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got.Address != newer.Address {
		t.Errorf("expected the newer contract %s, got %s", newer.Address, got.Address)
	}
}

func mustPager(t *testing.T) *ddb.Pager {
	t.Helper()
	p, err := ddb.NewPager(nil, nil, nil, nil, 25)
	if err != nil {
		t.Fatalf("new pager: %v", err)
	}
	return p
}
