package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// EmailSender delivers transactional email through an HTTP relay API.
// Sends are fire-and-forget from the caller's perspective: no retries.
type EmailSender struct {
	Endpoint    string
	APIKey      string
	FromName    string
	FromAddress string
	Client      *http.Client
}

// NewEmailSender constructs a sender with the platform's default identity.
func NewEmailSender(endpoint, apiKey, fromName, fromAddress string) *EmailSender {
	return &EmailSender{
		Endpoint:    endpoint,
		APIKey:      apiKey,
		FromName:    fromName,
		FromAddress: fromAddress,
		Client:      &http.Client{},
	}
}

// Send posts one email to the relay. Empty fromName/fromAddr fall back to
// the platform identity, so stores can send under their own name.
func (s *EmailSender) Send(ctx context.Context, to, subject, htmlBody, fromName, fromAddr string) error {
	if fromName == "" {
		fromName = s.FromName
	}
	if fromAddr == "" {
		fromAddr = s.FromAddress
	}

	data := url.Values{}
	data.Set("apiKey", s.APIKey)
	data.Set("to", to)
	data.Set("subject", subject)
	data.Set("html", htmlBody)
	data.Set("fromName", fromName)
	data.Set("fromAddress", fromAddr)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("email relay request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read email relay response: %v", err)
	}

	var result struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse email relay response: %v", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("email relay error: %s (code %d)", result.Message, result.Code)
	}
	return nil
}
