package aws

import (
	"context"
	"encoding/json"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/domain"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher is the subset of the SNS API the adapter depends on.
// *sns.Client satisfies it.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Task is a queued lifecycle operation. Exactly one variant is set.
type Task struct {
	Mint     *MintPayload     `json:"mint,omitempty"`
	Sell     *SellPayload     `json:"sell,omitempty"`
	Transfer *TransferPayload `json:"transfer,omitempty"`
}

// MintPayload asks for a mint of the work stored at GsPath.
type MintPayload struct {
	WorkID string `json:"workId"`
	GsPath string `json:"gsPath"`
}

// SellPayload asks for a sell order.
type SellPayload struct {
	Address domain.ContractAddress `json:"address"`
	TokenID domain.TokenID         `json:"tokenId"`
	Ether   float64                `json:"ether"`
}

// TransferPayload asks for an ownership transfer.
type TransferPayload struct {
	Address   domain.ContractAddress `json:"address"`
	TokenID   domain.TokenID         `json:"tokenId"`
	ToAddress domain.WalletAddress   `json:"toAddress"`
}

// Message serializes the task for publication.
func (t Task) Message() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", apperrors.Wrap(err)
	}
	return string(raw), nil
}

// TaskFromMessage parses a dequeued task. A message carrying no variant is
// BadRequest.
func TaskFromMessage(message string) (Task, error) {
	var t Task
	if err := json.Unmarshal([]byte(message), &t); err != nil {
		return Task{}, apperrors.BadRequestf("invalid task message: %s", err)
	}
	if t.Mint == nil && t.Sell == nil && t.Transfer == nil {
		return Task{}, apperrors.BadRequestf("task message carries no payload")
	}
	return t, nil
}

// SNSAdapter publishes lifecycle tasks to the dispatch topic.
type SNSAdapter struct {
	cli      SNSPublisher
	topicARN string
}

// NewSNSAdapter creates an adapter bound to the topic.
func NewSNSAdapter(cli SNSPublisher, topicARN string) *SNSAdapter {
	return &SNSAdapter{cli: cli, topicARN: topicARN}
}

// PublishTask enqueues a task. Delivery is at-least-once.
func (a *SNSAdapter) PublishTask(ctx context.Context, task Task) error {
	message, err := task.Message()
	if err != nil {
		return err
	}
	_, err = a.cli.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(a.topicARN),
		Message:  awssdk.String(message),
	})
	return apperrors.Wrap(err)
}
