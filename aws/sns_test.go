package aws_test

import (
	"context"
	"testing"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.published = append(f.published, *params.Message)
	return &sns.PublishOutput{}, nil
}

func TestTaskRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		task aws.Task
	}{
		{"mint", aws.Task{Mint: &aws.MintPayload{WorkID: "work-1", GsPath: "gs://bucket/work-1.png"}}},
		{"sell", aws.Task{Sell: &aws.SellPayload{Address: "0xabc", TokenID: "7", Ether: 1.5}}},
		{"transfer", aws.Task{Transfer: &aws.TransferPayload{Address: "0xabc", TokenID: "7", ToAddress: "0xto"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, err := tt.task.Message()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			decoded, err := aws.TaskFromMessage(message)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch tt.name {
			case "mint":
				if decoded.Mint == nil || decoded.Mint.WorkID != "work-1" {
					t.Errorf("mint payload did not survive: %#v", decoded)
				}
				if decoded.Sell != nil || decoded.Transfer != nil {
					t.Error("expected only the mint variant to be set")
				}
			case "sell":
				if decoded.Sell == nil || decoded.Sell.Ether != 1.5 {
					t.Errorf("sell payload did not survive: %#v", decoded)
				}
			case "transfer":
				if decoded.Transfer == nil || decoded.Transfer.ToAddress != "0xto" {
					t.Errorf("transfer payload did not survive: %#v", decoded)
				}
			}
		})
	}
}

func TestTaskFromMessageRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"not json", "not json"},
		{"no variant", "{}"},
		{"unknown variant only", `{"burn":{"tokenId":"7"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := aws.TaskFromMessage(tt.message)
			if apperrors.KindOf(err) != apperrors.BadRequest {
				t.Errorf("expected bad request, got %v", err)
			}
		})
	}
}

func TestSNSAdapterPublishTask(t *testing.T) {
	publisher := &fakePublisher{}
	adapter := aws.NewSNSAdapter(publisher, "arn:topic")

	task := aws.Task{Mint: &aws.MintPayload{WorkID: "work-1", GsPath: "gs://bucket/work-1.png"}}
	if err := adapter.PublishTask(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(publisher.published))
	}

	decoded, err := aws.TaskFromMessage(publisher.published[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Mint == nil || decoded.Mint.GsPath != "gs://bucket/work-1.png" {
		t.Errorf("published message did not round trip: %#v", decoded)
	}
}
