// Package aws holds the AWS service adapters other than DynamoDB: the
// OpenSea SDK lambda (marketplace), SNS task publishing, SSM-backed dotenv
// bootstrap and SES mail.
package aws

import (
	"context"
	"encoding/json"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/domain"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaInvoker is the subset of the Lambda API the adapter depends on.
// *lambda.Client satisfies it.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// OpenSeaRequest is the marketplace call payload.
type OpenSeaRequest struct {
	Method       string  `json:"method"`
	TokenAddress string  `json:"tokenAddress"`
	TokenID      string  `json:"tokenId"`
	Ether        float64 `json:"ether,omitempty"`
	Quantity     int     `json:"quantity,omitempty"`
	Schema       string  `json:"schema,omitempty"`
}

// NewOpenSeaInfoRequest builds a listing-info query for one token.
func NewOpenSeaInfoRequest(address domain.ContractAddress, tokenID domain.TokenID) OpenSeaRequest {
	return OpenSeaRequest{
		Method:       "info",
		TokenAddress: string(address),
		TokenID:      string(tokenID),
	}
}

// NewOpenSeaSellRequest builds a sell order for one token.
func NewOpenSeaSellRequest(address domain.ContractAddress, tokenID domain.TokenID, ether float64) OpenSeaRequest {
	return OpenSeaRequest{
		Method:       "sell",
		TokenAddress: string(address),
		TokenID:      string(tokenID),
		Ether:        ether,
		Quantity:     1,
		Schema:       string(domain.SchemaERC721),
	}
}

// OpenSeaResponse is the marketplace call result. A zero Result is success;
// the variant matching the request method carries the payload.
type OpenSeaResponse struct {
	Result       int              `json:"result"`
	ErrorMessage *string          `json:"errorMessage"`
	InfoResponse *OpenSeaInfoData `json:"infoResponse"`
	SellResponse *OpenSeaSellData `json:"sellResponse"`
}

// OpenSeaInfoData reports the current listing price; "0" when no active
// sale exists.
type OpenSeaInfoData struct {
	SellPrice string `json:"sellPrice"`
}

// OpenSeaSellData reports the price the marketplace actually confirmed,
// which may differ from the requested one.
type OpenSeaSellData struct {
	SellPrice string `json:"sellPrice"`
}

// OpenSeaAdapter invokes the OpenSea SDK lambda.
type OpenSeaAdapter struct {
	cli         LambdaInvoker
	functionARN string
}

// NewOpenSeaAdapter creates an adapter bound to the SDK lambda function.
func NewOpenSeaAdapter(cli LambdaInvoker, functionARN string) *OpenSeaAdapter {
	return &OpenSeaAdapter{cli: cli, functionARN: functionARN}
}

// Invoke calls the marketplace. A lambda function error, an undecodable
// payload or a non-zero result code is Internal.
func (a *OpenSeaAdapter) Invoke(ctx context.Context, req OpenSeaRequest) (*OpenSeaResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	res, err := a.cli.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: awssdk.String(a.functionARN),
		Payload:      payload,
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if res.FunctionError != nil {
		return nil, apperrors.Internalf("opensea sdk failed: %s", *res.FunctionError)
	}

	var out OpenSeaResponse
	if err := json.Unmarshal(res.Payload, &out); err != nil {
		return nil, apperrors.Wrap(err)
	}
	if out.Result != 0 {
		msg := "opensea sdk returned an error"
		if out.ErrorMessage != nil {
			msg = *out.ErrorMessage
		}
		return nil, apperrors.Internalf("opensea sdk result %d: %s", out.Result, msg)
	}
	return &out, nil
}
