// Package ddb provides the single-table DynamoDB storage layer for
// contracts and tokens.
//
// Both entity kinds share one physical table. Items are addressed by a
// composite (pk, sk) key whose values carry a type discriminator prefix
// ("contract#...", "token#..."), and listed through secondary indexes with
// opaque cursor pagination.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	tableName = "cng-contract"

	glkCreatedAtIndex           = "glk-createdAt-index"
	schemaCreatedAtIndex        = "schema-createdAt-index"
	walletAddressCreatedAtIndex = "walletAddress-createdAt-index"
	walletSchemaCreatedAtIndex  = "walletAddressSchema-createdAt-index"
)

// Client is the subset of the DynamoDB API the repositories depend on.
// *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

var (
	// ErrMissingField is returned when a required attribute is absent.
	ErrMissingField = errors.New("missing field")

	// ErrTypeMismatch is returned when an attribute has the wrong scalar kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidEnum is returned when an enum attribute holds an
	// unrecognized value.
	ErrInvalidEnum = errors.New("invalid enum value")
)

func stringValue(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberValue(v float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	av, ok := item[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrMissingField)
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrTypeMismatch)
	}
	return s.Value, nil
}

// optionalNumberAttr decodes an optional numeric attribute. Absence is not
// an error; it decodes to nil.
func optionalNumberAttr(item map[string]types.AttributeValue, name string) (*float64, error) {
	av, ok := item[name]
	if !ok {
		return nil, nil
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTypeMismatch)
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrTypeMismatch)
	}
	return &v, nil
}

func timeAttr(item map[string]types.AttributeValue, name string) (time.Time, error) {
	raw, err := stringAttr(item, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, ErrTypeMismatch)
	}
	return t, nil
}
