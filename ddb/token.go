package ddb

import (
	"context"
	"time"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func tokenPrimaryKey(address domain.ContractAddress, tokenID domain.TokenID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": stringValue(contractKey.Encode(address)),
		"sk": stringValue(tokenKey.Encode(tokenID)),
	}
}

func marshalToken(t *domain.Token) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"pk":            stringValue(contractKey.Encode(t.Address)),
		"sk":            stringValue(tokenKey.Encode(t.TokenID)),
		"workId":        stringValue(t.WorkID),
		"ownerAddress":  stringValue(string(t.OwnerAddress)),
		"ipfsImageHash": stringValue(t.IpfsImageHash),
		"name":          stringValue(t.Name),
		"description":   stringValue(t.Description),
		"createdAt":     stringValue(t.CreatedAt.Format(time.RFC3339)),
		"glk":           stringValue(tokenKey.Typename()),
	}
	// Absent price means "stock"; never written as null.
	if t.PriceEth != nil {
		item["priceEth"] = numberValue(*t.PriceEth)
	}
	return item
}

func unmarshalToken(item map[string]types.AttributeValue) (*domain.Token, error) {
	pk, err := stringAttr(item, "pk")
	if err != nil {
		return nil, err
	}
	address, err := contractKey.Decode(pk)
	if err != nil {
		return nil, err
	}
	sk, err := stringAttr(item, "sk")
	if err != nil {
		return nil, err
	}
	tokenID, err := tokenKey.Decode(sk)
	if err != nil {
		return nil, err
	}
	workID, err := stringAttr(item, "workId")
	if err != nil {
		return nil, err
	}
	ownerAddress, err := stringAttr(item, "ownerAddress")
	if err != nil {
		return nil, err
	}
	ipfsImageHash, err := stringAttr(item, "ipfsImageHash")
	if err != nil {
		return nil, err
	}
	name, err := stringAttr(item, "name")
	if err != nil {
		return nil, err
	}
	description, err := stringAttr(item, "description")
	if err != nil {
		return nil, err
	}
	priceEth, err := optionalNumberAttr(item, "priceEth")
	if err != nil {
		return nil, err
	}
	createdAt, err := timeAttr(item, "createdAt")
	if err != nil {
		return nil, err
	}

	return &domain.Token{
		Address:       address,
		TokenID:       tokenID,
		WorkID:        workID,
		OwnerAddress:  domain.WalletAddress(ownerAddress),
		IpfsImageHash: ipfsImageHash,
		Name:          name,
		Description:   description,
		PriceEth:      priceEth,
		CreatedAt:     createdAt,
	}, nil
}

// TokenRepository owns all reads and writes of token records.
type TokenRepository struct {
	cli Client
}

// NewTokenRepository creates a repository backed by the given client.
func NewTokenRepository(cli Client) *TokenRepository {
	return &TokenRepository{cli: cli}
}

// Get performs a point lookup by composite identity.
func (r *TokenRepository) Get(ctx context.Context, address domain.ContractAddress, tokenID domain.TokenID) (*domain.Token, error) {
	res, err := r.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       tokenPrimaryKey(address, tokenID),
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if res.Item == nil {
		return nil, apperrors.NotFoundf("token %s#%s not found", address, tokenID)
	}
	t, err := unmarshalToken(res.Item)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return t, nil
}

// BatchGet looks up multiple tokens of one contract at once. Empty input
// short-circuits; missing keys are silently omitted.
func (r *TokenRepository) BatchGet(ctx context.Context, address domain.ContractAddress, tokenIDs []domain.TokenID) ([]*domain.Token, error) {
	if len(tokenIDs) == 0 {
		return []*domain.Token{}, nil
	}

	seen := make(map[domain.TokenID]struct{}, len(tokenIDs))
	keys := make([]map[string]types.AttributeValue, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		if _, ok := seen[tokenID]; ok {
			continue
		}
		seen[tokenID] = struct{}{}
		keys = append(keys, tokenPrimaryKey(address, tokenID))
	}

	res, err := r.cli.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			tableName: {Keys: keys},
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	tokens := make([]*domain.Token, 0, len(keys))
	for _, item := range res.Responses[tableName] {
		t, err := unmarshalToken(item)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// Put writes a token record, overwriting unconditionally.
func (r *TokenRepository) Put(ctx context.Context, t *domain.Token) error {
	_, err := r.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      marshalToken(t),
	})
	return apperrors.Wrap(err)
}

// GetByContractWithPager lists a contract's tokens in sort-key order.
func (r *TokenRepository) GetByContractWithPager(
	ctx context.Context,
	address domain.ContractAddress,
	pager *Pager,
) (*Page[*domain.Token], error) {
	entities, err := r.queryByContract(ctx, address, pager)
	if err != nil {
		return nil, err
	}
	page := NewPage(pager, entities)
	return &page, nil
}

// GetStockByContractWithPager lists a wallet's unlisted tokens under a
// contract. The priceEth presence filter is applied application-side, so
// the page flags remain a heuristic over the underlying scan.
func (r *TokenRepository) GetStockByContractWithPager(
	ctx context.Context,
	ownerAddress domain.WalletAddress,
	address domain.ContractAddress,
	pager *Pager,
) (*Page[*domain.Token], error) {
	entities, err := r.queryByContract(ctx, address, pager)
	if err != nil {
		return nil, err
	}
	page := NewPage(pager, entities)
	page.Items = filterTokens(page.Items, func(t *domain.Token) bool {
		return t.OwnerAddress == ownerAddress && !t.IsListed()
	})
	return &page, nil
}

// GetSellOrderByContractWithPager lists a wallet's listed tokens under a
// contract.
func (r *TokenRepository) GetSellOrderByContractWithPager(
	ctx context.Context,
	ownerAddress domain.WalletAddress,
	address domain.ContractAddress,
	pager *Pager,
) (*Page[*domain.Token], error) {
	entities, err := r.queryByContract(ctx, address, pager)
	if err != nil {
		return nil, err
	}
	page := NewPage(pager, entities)
	page.Items = filterTokens(page.Items, func(t *domain.Token) bool {
		return t.OwnerAddress == ownerAddress && t.IsListed()
	})
	return &page, nil
}

// GetAllByContract walks every token record under a contract. Used by
// reconciliation.
func (r *TokenRepository) GetAllByContract(ctx context.Context, address domain.ContractAddress) ([]*domain.Token, error) {
	var tokens []*domain.Token
	var startKey map[string]types.AttributeValue

	for {
		res, err := r.cli.Query(ctx, tokenQueryInput(address, nil, startKey))
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		for _, item := range res.Items {
			t, err := unmarshalToken(item)
			if err != nil {
				return nil, apperrors.Wrap(err)
			}
			tokens = append(tokens, t)
		}
		if res.LastEvaluatedKey == nil {
			return tokens, nil
		}
		startKey = res.LastEvaluatedKey
	}
}

// ExistsByIpfsImageHash reports whether the contract already holds a token
// minted from the given image. Best-effort duplicate-mint guard, not a lock.
func (r *TokenRepository) ExistsByIpfsImageHash(ctx context.Context, address domain.ContractAddress, ipfsImageHash string) (bool, error) {
	var startKey map[string]types.AttributeValue

	for {
		res, err := r.cli.Query(ctx, tokenQueryInput(address, nil, startKey))
		if err != nil {
			return false, apperrors.Wrap(err)
		}
		for _, item := range res.Items {
			t, err := unmarshalToken(item)
			if err != nil {
				return false, apperrors.Wrap(err)
			}
			if t.IpfsImageHash == ipfsImageHash {
				return true, nil
			}
		}
		if res.LastEvaluatedKey == nil {
			return false, nil
		}
		startKey = res.LastEvaluatedKey
	}
}

func (r *TokenRepository) queryByContract(
	ctx context.Context,
	address domain.ContractAddress,
	pager *Pager,
) ([]EntityWithCursor[*domain.Token], error) {
	input := tokenQueryInput(address, aws.Int32(pager.QueryLimit()), pager.ExclusiveStartKey())
	input.ScanIndexForward = aws.Bool(pager.Forward())

	res, err := r.cli.Query(ctx, input)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	entities := make([]EntityWithCursor[*domain.Token], 0, len(res.Items))
	for _, item := range res.Items {
		t, err := unmarshalToken(item)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		entities = append(entities, EntityWithCursor[*domain.Token]{
			Entity: t,
			Cursor: NewPagingKey(map[string]types.AttributeValue{
				"pk": item["pk"],
				"sk": item["sk"],
			}),
		})
	}
	return entities, nil
}

func tokenQueryInput(address domain.ContractAddress, limit *int32, startKey map[string]types.AttributeValue) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :skPrefix)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "pk",
			"#sk": "sk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":       stringValue(contractKey.Encode(address)),
			":skPrefix": stringValue(tokenKey.Typename() + "#"),
		},
		Limit:             limit,
		ExclusiveStartKey: startKey,
	}
}

func filterTokens(items []EntityWithCursor[*domain.Token], keep func(*domain.Token) bool) []EntityWithCursor[*domain.Token] {
	filtered := make([]EntityWithCursor[*domain.Token], 0, len(items))
	for _, item := range items {
		if keep(item.Entity) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
