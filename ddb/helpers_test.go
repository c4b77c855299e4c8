package ddb_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ctx = context.Background()

// fakeClient stubs the DynamoDB surface the repositories use. Unset
// handlers fail the calling test.
type fakeClient struct {
	t            *testing.T
	getItem      func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem      func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	query        func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	batchGetItem func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
}

func (f *fakeClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getItem == nil {
		f.t.Fatal("unexpected GetItem call")
	}
	return f.getItem(params)
}

func (f *fakeClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putItem == nil {
		f.t.Fatal("unexpected PutItem call")
	}
	return f.putItem(params)
}

func (f *fakeClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.query == nil {
		f.t.Fatal("unexpected Query call")
	}
	return f.query(params)
}

func (f *fakeClient) BatchGetItem(_ context.Context, params *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	if f.batchGetItem == nil {
		f.t.Fatal("unexpected BatchGetItem call")
	}
	return f.batchGetItem(params)
}

// contractItem mirrors the stored contract attribute layout for building
// fixtures.
type contractItem struct {
	PK                  string `dynamodbav:"pk"`
	SK                  string `dynamodbav:"sk"`
	WalletAddress       string `dynamodbav:"walletAddress"`
	Schema              string `dynamodbav:"schema"`
	Network             string `dynamodbav:"network"`
	ABI                 string `dynamodbav:"abi"`
	CreatedAt           string `dynamodbav:"createdAt"`
	GLK                 string `dynamodbav:"glk"`
	WalletAddressSchema string `dynamodbav:"walletAddress_schema"`
}

func contractFixture(t *testing.T, address string, wallet string, createdAt string) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(contractItem{
		PK:                  "contract#" + address,
		SK:                  "contract#" + address,
		WalletAddress:       wallet,
		Schema:              "ERC721",
		Network:             "Avalanche",
		ABI:                 "[]",
		CreatedAt:           createdAt,
		GLK:                 "contract",
		WalletAddressSchema: wallet + "_ERC721",
	})
	if err != nil {
		t.Fatalf("marshal contract fixture: %v", err)
	}
	return item
}

// tokenItem mirrors the stored token attribute layout for building
// fixtures. A nil PriceEth is omitted, matching the stock representation.
type tokenItem struct {
	PK            string   `dynamodbav:"pk"`
	SK            string   `dynamodbav:"sk"`
	WorkID        string   `dynamodbav:"workId"`
	OwnerAddress  string   `dynamodbav:"ownerAddress"`
	IpfsImageHash string   `dynamodbav:"ipfsImageHash"`
	Name          string   `dynamodbav:"name"`
	Description   string   `dynamodbav:"description"`
	PriceEth      *float64 `dynamodbav:"priceEth,omitempty"`
	CreatedAt     string   `dynamodbav:"createdAt"`
	GLK           string   `dynamodbav:"glk"`
}

func tokenFixture(t *testing.T, address string, tokenID string, owner string, priceEth *float64) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(tokenItem{
		PK:            "contract#" + address,
		SK:            "token#" + tokenID,
		WorkID:        "work-" + tokenID,
		OwnerAddress:  owner,
		IpfsImageHash: "ipfs://image-" + tokenID,
		Name:          "work-" + tokenID,
		Description:   "canvas nft",
		PriceEth:      priceEth,
		CreatedAt:     "2024-06-01T00:00:00Z",
		GLK:           "token",
	})
	if err != nil {
		t.Fatalf("marshal token fixture: %v", err)
	}
	return item
}
