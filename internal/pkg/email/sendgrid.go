package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// SendGridConfig holds SendGrid configuration
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Endpoint  string // overrides the public API, used in tests
}

// SendGridClient posts messages to the SendGrid v3 mail API.
type SendGridClient struct {
	config     SendGridConfig
	httpClient *http.Client
}

func NewSendGridClient(config SendGridConfig) *SendGridClient {
	if config.Endpoint == "" {
		config.Endpoint = sendGridEndpoint
	}
	return &SendGridClient{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Message is a rendered email ready to send.
type Message struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
	TextContent string
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers msg. SendGrid requires text/plain before text/html.
func (c *SendGridClient) Send(ctx context.Context, msg *Message) error {
	req := sgRequest{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: msg.To, Name: msg.ToName}}}},
		From:             sgAddress{Email: c.config.FromEmail, Name: c.config.FromName},
		Subject:          msg.Subject,
	}
	if msg.TextContent != "" {
		req.Content = append(req.Content, sgContent{Type: "text/plain", Value: msg.TextContent})
	}
	if msg.HTMLContent != "" {
		req.Content = append(req.Content, sgContent{Type: "text/html", Value: msg.HTMLContent})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal sendgrid request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
