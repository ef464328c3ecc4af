package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}, nil
}

func (s *sesSender) SendConfirmation(ctx context.Context, sub *domain.Submission) error {
	if sub.Email == "" {
		return nil
	}
	subject := "We received your details"
	textBody := BuildConfirmationText(sub)
	htmlBody := buildConfirmationHTML(sub)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{sub.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

// BuildConfirmationText renders the plain-text body listing the collected fields.
func BuildConfirmationText(sub *domain.Submission) string {
	return fmt.Sprintf("Hi %s,\n\nThanks, we have your details:\n\n%s: %s\n%s: %s\n%s: %s\n%s: %s\n\nIf anything is wrong, just start a new form.\n",
		sub.Name,
		domain.FieldFullName.Label(), sub.Name,
		domain.FieldEmail.Label(), sub.Email,
		domain.FieldPhone.Label(), sub.Phone,
		domain.FieldAddress.Label(), sub.Address)
}

func buildConfirmationHTML(sub *domain.Submission) string {
	row := func(label, v string) string {
		return fmt.Sprintf(`<tr><td style="color: #666; padding: 4px 12px 4px 0;">%s</td><td>%s</td></tr>`,
			label, html.EscapeString(v))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Thanks, %s</h2>
  <p>We have recorded the following details:</p>
  <table>%s%s%s%s</table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Voxform</p>
</body>
</html>`,
		html.EscapeString(sub.Name),
		row(domain.FieldFullName.Label(), sub.Name),
		row(domain.FieldEmail.Label(), sub.Email),
		row(domain.FieldPhone.Label(), sub.Phone),
		row(domain.FieldAddress.Label(), sub.Address))
}
