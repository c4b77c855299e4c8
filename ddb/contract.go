package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func contractPrimaryKey(address domain.ContractAddress) map[string]types.AttributeValue {
	encoded := contractKey.Encode(address)
	return map[string]types.AttributeValue{
		"pk": stringValue(encoded),
		"sk": stringValue(encoded),
	}
}

func marshalContract(c *domain.Contract) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"walletAddress":        stringValue(string(c.WalletAddress)),
		"schema":               stringValue(c.Schema.String()),
		"network":              stringValue(c.Network.String()),
		"abi":                  stringValue(c.ABI),
		"createdAt":            stringValue(c.CreatedAt.Format(time.RFC3339)),
		"glk":                  stringValue(contractKey.Typename()),
		"walletAddress_schema": stringValue(walletSchemaKey(c.WalletAddress, c.Schema)),
	}
	for k, v := range contractPrimaryKey(c.Address) {
		item[k] = v
	}
	return item
}

func unmarshalContract(item map[string]types.AttributeValue) (*domain.Contract, error) {
	pk, err := stringAttr(item, "pk")
	if err != nil {
		return nil, err
	}
	address, err := contractKey.Decode(pk)
	if err != nil {
		return nil, err
	}
	walletAddress, err := stringAttr(item, "walletAddress")
	if err != nil {
		return nil, err
	}
	rawSchema, err := stringAttr(item, "schema")
	if err != nil {
		return nil, err
	}
	schema, err := domain.ParseSchema(rawSchema)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", ErrInvalidEnum)
	}
	rawNetwork, err := stringAttr(item, "network")
	if err != nil {
		return nil, err
	}
	network, err := domain.ParseNetwork(rawNetwork)
	if err != nil {
		return nil, fmt.Errorf("network: %w", ErrInvalidEnum)
	}
	abi, err := stringAttr(item, "abi")
	if err != nil {
		return nil, err
	}
	createdAt, err := timeAttr(item, "createdAt")
	if err != nil {
		return nil, err
	}

	return &domain.Contract{
		Address:       address,
		WalletAddress: domain.WalletAddress(walletAddress),
		Schema:        schema,
		Network:       network,
		ABI:           abi,
		CreatedAt:     createdAt,
	}, nil
}

// ContractRepository owns all reads and writes of contract records.
type ContractRepository struct {
	cli Client
}

// NewContractRepository creates a repository backed by the given client.
func NewContractRepository(cli Client) *ContractRepository {
	return &ContractRepository{cli: cli}
}

// Get performs a point lookup by address.
func (r *ContractRepository) Get(ctx context.Context, address domain.ContractAddress) (*domain.Contract, error) {
	res, err := r.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       contractPrimaryKey(address),
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if res.Item == nil {
		return nil, apperrors.NotFoundf("contract %s not found", address)
	}
	c, err := unmarshalContract(res.Item)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return c, nil
}

// BatchGet looks up multiple contracts at once. Duplicate addresses are
// collapsed, an empty input short-circuits without a network call, and
// missing keys are silently omitted from the result.
func (r *ContractRepository) BatchGet(ctx context.Context, addresses []domain.ContractAddress) ([]*domain.Contract, error) {
	if len(addresses) == 0 {
		return []*domain.Contract{}, nil
	}

	seen := make(map[domain.ContractAddress]struct{}, len(addresses))
	keys := make([]map[string]types.AttributeValue, 0, len(addresses))
	for _, address := range addresses {
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		keys = append(keys, contractPrimaryKey(address))
	}

	res, err := r.cli.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			tableName: {Keys: keys},
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	contracts := make([]*domain.Contract, 0, len(keys))
	for _, item := range res.Responses[tableName] {
		c, err := unmarshalContract(item)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

// Put writes a contract record, overwriting unconditionally.
func (r *ContractRepository) Put(ctx context.Context, c *domain.Contract) error {
	_, err := r.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      marshalContract(c),
	})
	return apperrors.Wrap(err)
}

// GetWithPager lists all contracts, newest first, through the glk index.
func (r *ContractRepository) GetWithPager(ctx context.Context, pager *Pager) (*Page[*domain.Contract], error) {
	res, err := r.cli.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(glkCreatedAtIndex),
		KeyConditionExpression: aws.String("#glk = :glk"),
		ExpressionAttributeNames: map[string]string{
			"#glk": "glk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":glk": stringValue(contractKey.Typename()),
		},
		Limit:             aws.Int32(pager.QueryLimit()),
		ScanIndexForward:  aws.Bool(!pager.Forward()),
		ExclusiveStartKey: pager.ExclusiveStartKey(),
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	entities, err := cursoredContracts(res.Items, "glk")
	if err != nil {
		return nil, err
	}
	page := NewPage(pager, entities)
	return &page, nil
}

// GetByWalletAddressWithPager lists a wallet's contracts, newest first.
func (r *ContractRepository) GetByWalletAddressWithPager(
	ctx context.Context,
	walletAddress domain.WalletAddress,
	pager *Pager,
) (*Page[*domain.Contract], error) {
	res, err := r.cli.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(walletAddressCreatedAtIndex),
		KeyConditionExpression: aws.String("#walletAddress = :walletAddress"),
		ExpressionAttributeNames: map[string]string{
			"#walletAddress": "walletAddress",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":walletAddress": stringValue(string(walletAddress)),
		},
		Limit:             aws.Int32(pager.QueryLimit()),
		ScanIndexForward:  aws.Bool(!pager.Forward()),
		ExclusiveStartKey: pager.ExclusiveStartKey(),
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	entities, err := cursoredContracts(res.Items, "walletAddress")
	if err != nil {
		return nil, err
	}
	page := NewPage(pager, entities)
	return &page, nil
}

// GetLatestBySchema returns the most recently created contract of the given
// schema. NotFound means no contract exists yet, not a system fault.
func (r *ContractRepository) GetLatestBySchema(ctx context.Context, schema domain.Schema) (*domain.Contract, error) {
	res, err := r.cli.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(schemaCreatedAtIndex),
		KeyConditionExpression: aws.String("#schema = :schema"),
		ExpressionAttributeNames: map[string]string{
			"#schema": "schema",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":schema": stringValue(schema.String()),
		},
		Limit:            aws.Int32(1),
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if len(res.Items) == 0 {
		return nil, apperrors.NotFoundf("no %s contract found", schema)
	}
	c, err := unmarshalContract(res.Items[0])
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return c, nil
}

// GetLatestByWalletAddressAndSchema returns the most recently created
// contract of the given wallet and schema.
func (r *ContractRepository) GetLatestByWalletAddressAndSchema(
	ctx context.Context,
	walletAddress domain.WalletAddress,
	schema domain.Schema,
) (*domain.Contract, error) {
	res, err := r.cli.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(walletSchemaCreatedAtIndex),
		KeyConditionExpression: aws.String("#walletAddressSchema = :walletAddressSchema"),
		ExpressionAttributeNames: map[string]string{
			"#walletAddressSchema": "walletAddress_schema",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":walletAddressSchema": stringValue(walletSchemaKey(walletAddress, schema)),
		},
		Limit:            aws.Int32(1),
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if len(res.Items) == 0 {
		return nil, apperrors.NotFoundf("no %s contract found for wallet %s", schema, walletAddress)
	}
	c, err := unmarshalContract(res.Items[0])
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return c, nil
}

// GetAll walks every contract record. Used by reconciliation.
func (r *ContractRepository) GetAll(ctx context.Context) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	var startKey map[string]types.AttributeValue

	for {
		res, err := r.cli.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(tableName),
			IndexName:              aws.String(glkCreatedAtIndex),
			KeyConditionExpression: aws.String("#glk = :glk"),
			ExpressionAttributeNames: map[string]string{
				"#glk": "glk",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":glk": stringValue(contractKey.Typename()),
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		for _, item := range res.Items {
			c, err := unmarshalContract(item)
			if err != nil {
				return nil, apperrors.Wrap(err)
			}
			contracts = append(contracts, c)
		}
		if res.LastEvaluatedKey == nil {
			return contracts, nil
		}
		startKey = res.LastEvaluatedKey
	}
}

// cursoredContracts annotates decoded contracts with their index resume
// position: the table key plus the index partition attribute and createdAt.
func cursoredContracts(items []map[string]types.AttributeValue, indexPartitionAttr string) ([]EntityWithCursor[*domain.Contract], error) {
	entities := make([]EntityWithCursor[*domain.Contract], 0, len(items))
	for _, item := range items {
		c, err := unmarshalContract(item)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		entities = append(entities, EntityWithCursor[*domain.Contract]{
			Entity: c,
			Cursor: NewPagingKey(map[string]types.AttributeValue{
				"pk":               item["pk"],
				"sk":               item["sk"],
				indexPartitionAttr: item[indexPartitionAttr],
				"createdAt":        item["createdAt"],
			}),
		})
	}
	return entities, nil
}
