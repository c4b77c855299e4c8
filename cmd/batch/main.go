// Package main runs batch jobs, either as a scheduled lambda or as a
// one-shot local process selected by the COMMAND environment variable.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/di"
)

type event struct {
	Command string `json:"command"`
}

func main() {
	ctx := context.Background()
	c, err := di.NewContainer(ctx)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	h := handler{c: c}

	if os.Getenv("WITH_LAMBDA") != "" {
		lambda.Start(h.handle)
		return
	}
	if err := h.handle(ctx, event{Command: os.Getenv("COMMAND")}); err != nil {
		log.Fatalf("batch failed: %v", err)
	}
}

type handler struct {
	c *di.Container
}

func (h handler) handle(ctx context.Context, ev event) error {
	h.c.Logger.Info("batch started", "command", ev.Command)
	switch ev.Command {
	case "sync-token":
		_, err := h.c.NftApp.Sync(ctx)
		return err
	default:
		return apperrors.BadRequestf("unknown command %q", ev.Command)
	}
}
