package aws

import (
	"context"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESSender is the subset of the SESv2 API the adapter depends on.
// *sesv2.Client satisfies it.
type SESSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESAdapter sends completion notification mail.
type SESAdapter struct {
	cli  SESSender
	from string
}

// NewSESAdapter creates an adapter sending from the given address.
func NewSESAdapter(cli SESSender, from string) *SESAdapter {
	return &SESAdapter{cli: cli, from: from}
}

// Send delivers a plain-text mail.
func (a *SESAdapter) Send(ctx context.Context, to string, subject string, body string) error {
	_, err := a.cli.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: awssdk.String(a.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: awssdk.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: awssdk.String(body)},
				},
			},
		},
	})
	return apperrors.Wrap(err)
}
