package aws_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/aws"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

var ctx = context.Background()

type fakeInvoker struct {
	invoke func(*lambda.InvokeInput) (*lambda.InvokeOutput, error)
}

func (f *fakeInvoker) Invoke(_ context.Context, params *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	return f.invoke(params)
}

func TestOpenSeaAdapterSell(t *testing.T) {
	cli := &fakeInvoker{
		invoke: func(input *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			if *input.FunctionName != "arn:opensea" {
				t.Errorf("unexpected function %s", *input.FunctionName)
			}
			var req map[string]any
			if err := json.Unmarshal(input.Payload, &req); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			expect := map[string]any{
				"method":       "sell",
				"tokenAddress": "0xabc",
				"tokenId":      "7",
				"ether":        1.5,
				"quantity":     float64(1),
				"schema":       "ERC721",
			}
			for k, want := range expect {
				if req[k] != want {
					t.Errorf("field %s: expected %v, got %v", k, want, req[k])
				}
			}
			return &lambda.InvokeOutput{
				Payload: []byte(`{"result":0,"sellResponse":{"sellPrice":"1.4"}}`),
			}, nil
		},
	}
	adapter := aws.NewOpenSeaAdapter(cli, "arn:opensea")

	res, err := adapter.Invoke(ctx, aws.NewOpenSeaSellRequest("0xabc", "7", 1.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SellResponse == nil || res.SellResponse.SellPrice != "1.4" {
		t.Errorf("unexpected response %#v", res)
	}
}

func TestOpenSeaAdapterInfoOmitsSellFields(t *testing.T) {
	cli := &fakeInvoker{
		invoke: func(input *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			var req map[string]any
			if err := json.Unmarshal(input.Payload, &req); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			for _, absent := range []string{"ether", "quantity", "schema"} {
				if _, ok := req[absent]; ok {
					t.Errorf("expected %s to be omitted from an info request", absent)
				}
			}
			return &lambda.InvokeOutput{
				Payload: []byte(`{"result":0,"infoResponse":{"sellPrice":"0"}}`),
			}, nil
		},
	}
	adapter := aws.NewOpenSeaAdapter(cli, "arn:opensea")

	res, err := adapter.Invoke(ctx, aws.NewOpenSeaInfoRequest("0xabc", "7"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.InfoResponse == nil || res.InfoResponse.SellPrice != "0" {
		t.Errorf("unexpected response %#v", res)
	}
}

func TestOpenSeaAdapterNonZeroResult(t *testing.T) {
	cli := &fakeInvoker{
		invoke: func(*lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			return &lambda.InvokeOutput{
				Payload: []byte(`{"result":1,"errorMessage":"no such order"}`),
			}, nil
		},
	}
	adapter := aws.NewOpenSeaAdapter(cli, "arn:opensea")

	_, err := adapter.Invoke(ctx, aws.NewOpenSeaInfoRequest("0xabc", "7"))
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.KindOf(err) != apperrors.Internal {
		t.Errorf("expected internal, got %v", apperrors.KindOf(err))
	}
}

func TestOpenSeaAdapterFunctionError(t *testing.T) {
	cli := &fakeInvoker{
		invoke: func(*lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			return &lambda.InvokeOutput{
				FunctionError: awssdk.String("Unhandled"),
				Payload:       []byte(`{"errorType":"Error"}`),
			}, nil
		},
	}
	adapter := aws.NewOpenSeaAdapter(cli, "arn:opensea")

	if _, err := adapter.Invoke(ctx, aws.NewOpenSeaInfoRequest("0xabc", "7")); err == nil {
		t.Fatal("expected error")
	}
}
