// Package notify sends operational notification emails through Amazon SES.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// ServiceInterface defines the contract for an email notification service.
type ServiceInterface interface {
	Send(ctx context.Context, subject, body string) error
}

// SESService sends email through Amazon SES v2.
type SESService struct {
	client *sesv2.Client
	from   string
	to     string
}

// NewSESService builds a sender using the default AWS credential chain.
func NewSESService(ctx context.Context, region, from, to string) (*SESService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("notify.NewSESService: %w", err)
	}
	return &SESService{
		client: sesv2.NewFromConfig(cfg),
		from:   from,
		to:     to,
	}, nil
}

// Send delivers a plain-text email to the configured operations inbox.
func (s *SESService) Send(ctx context.Context, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{s.to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("notify.Send: %w", err)
	}
	return nil
}
