// Package main runs the task subscriber: it consumes lifecycle tasks from
// the SNS dispatch topic and applies them through the orchestrator.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/akihokurino/canvas-nft-generator/aws"
	"github.com/akihokurino/canvas-nft-generator/di"
)

func main() {
	c, err := di.NewContainer(context.Background())
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	h := handler{c: c}
	lambda.Start(h.handle)
}

type handler struct {
	c *di.Container
}

func (h handler) handle(ctx context.Context, event events.SNSEvent) error {
	for _, record := range event.Records {
		task, err := aws.TaskFromMessage(record.SNS.Message)
		if err != nil {
			// A malformed message never becomes valid; log and drop it
			// instead of retrying into the DLQ.
			h.c.Logger.Error("dropping invalid task", "messageId", record.SNS.MessageID, "error", err)
			continue
		}
		if err := h.apply(ctx, task); err != nil {
			h.c.Logger.Error("task failed", "messageId", record.SNS.MessageID, "error", err)
			return err
		}
	}
	return nil
}

func (h handler) apply(ctx context.Context, task aws.Task) error {
	switch {
	case task.Mint != nil:
		if _, err := h.c.NftApp.Mint(ctx, task.Mint.WorkID, task.Mint.GsPath, time.Now()); err != nil {
			return err
		}
		return h.notify(ctx, fmt.Sprintf("minted work %s", task.Mint.WorkID))
	case task.Sell != nil:
		if _, err := h.c.NftApp.Sell(ctx, task.Sell.Address, task.Sell.TokenID, task.Sell.Ether); err != nil {
			return err
		}
		return h.notify(ctx, fmt.Sprintf("listed token %s#%s at %g ether", task.Sell.Address, task.Sell.TokenID, task.Sell.Ether))
	case task.Transfer != nil:
		if _, err := h.c.NftApp.Transfer(ctx, task.Transfer.Address, task.Transfer.TokenID, task.Transfer.ToAddress); err != nil {
			return err
		}
		return h.notify(ctx, fmt.Sprintf("transferred token %s#%s to %s", task.Transfer.Address, task.Transfer.TokenID, task.Transfer.ToAddress))
	default:
		return nil
	}
}

// notify is best effort. A completed lifecycle operation is already
// durable; a failed notification only costs the announcement.
func (h handler) notify(ctx context.Context, text string) error {
	if err := h.c.InternalAPI.SendPush(ctx, text); err != nil {
		h.c.Logger.Warn("push notification failed", "error", err)
	}
	if h.c.Config.MailTo != "" {
		if err := h.c.Mailer.Send(ctx, h.c.Config.MailTo, "canvas nft", text); err != nil {
			h.c.Logger.Warn("mail notification failed", "error", err)
		}
	}
	return nil
}
