package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailSender delivers alert emails through SendGrid.
type EmailSender struct {
	apiKey      string
	fromAddress string
	logger      *zap.Logger
}

func NewEmailSender(apiKey, fromAddress string, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		apiKey:      apiKey,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

// Send delivers one plain-text alert email.
func (s *EmailSender) Send(ctx context.Context, fromName, toName, toAddress, subject, body string) error {
	from := mail.NewEmail(fromName, s.fromAddress)
	to := mail.NewEmail(toName, toAddress)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid rejected email to %s (status: %d)", toAddress, response.StatusCode)
	}

	s.logger.Info("Sent alert email", zap.String("to", toAddress))
	return nil
}
