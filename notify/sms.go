package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GatewaySender delivers SMS notifications through a JSON HTTP gateway.
// The gateway contract is deliberately minimal: POST {to, message}, any
// non-2xx response is a failure.
type GatewaySender struct {
	client *resty.Client
	url    string
	apiKey string
}

func NewGatewaySender(url, apiKey string) *GatewaySender {
	return &GatewaySender{
		client: resty.New().SetTimeout(30 * time.Second),
		url:    url,
		apiKey: apiKey,
	}
}

type gatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (s *GatewaySender) Send(ctx context.Context, destination string, content Content) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetBody(gatewayRequest{To: destination, Message: content.Body}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
