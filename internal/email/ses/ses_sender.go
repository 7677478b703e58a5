package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"erpdesk/internal/domain"
	"erpdesk/internal/email"
	"erpdesk/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	from        string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		from:        fmt.Sprintf("%s <%s>", fromName, fromAddress),
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendApprovalRequest(ctx context.Context, toEmail, toName string, doc *domain.Document) error {
	return s.send(ctx, toEmail, email.ApprovalRequest(s.frontendURL, toName, doc))
}

func (s *sesSender) SendStatusChanged(ctx context.Context, toEmail, toName string, doc *domain.Document) error {
	return s.send(ctx, toEmail, email.StatusChanged(s.frontendURL, toName, doc))
}

func (s *sesSender) send(ctx context.Context, toEmail string, msg email.Message) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
					Text: &types.Content{Data: aws.String(msg.Text)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
