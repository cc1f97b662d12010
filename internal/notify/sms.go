package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const nexmoSMSEndpoint = "https://rest.nexmo.com/sms/json"

// nexmoResponse is the portion of Nexmo's reply we act on. Nexmo reports
// per-message status inside a 200 response, so HTTP success alone is not
// delivery success.
type nexmoResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// SMSSender delivers alert texts through the Nexmo SMS API.
type SMSSender struct {
	httpClient *resty.Client
	apiKey     string
	apiSecret  string
	logger     *zap.Logger
}

func NewSMSSender(apiKey, apiSecret string, logger *zap.Logger) *SMSSender {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)

	return &SMSSender{
		httpClient: client,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		logger:     logger,
	}
}

// Send delivers one text. from is the alphanumeric sender id shown on the
// recipient's phone.
func (s *SMSSender) Send(ctx context.Context, from, to, text string) error {
	var response nexmoResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_key":    s.apiKey,
			"api_secret": s.apiSecret,
			"from":       from,
			"to":         to,
			"text":       text,
		}).
		SetResult(&response).
		Post(nexmoSMSEndpoint)
	if err != nil {
		return fmt.Errorf("failed to call Nexmo SMS API: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("Nexmo SMS API returned status %d", resp.StatusCode())
	}
	for _, m := range response.Messages {
		if m.Status != "0" {
			return fmt.Errorf("Nexmo rejected SMS to %s: %s (status: %s)", to, m.ErrorText, m.Status)
		}
	}

	s.logger.Info("Sent alert SMS", zap.String("to", to))
	return nil
}
