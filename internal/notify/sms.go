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

// SMSSender delivers text messages through the Mobizon gateway.
type SMSSender struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewSMSSender(endpoint, apiKey string) *SMSSender {
	if endpoint == "" {
		endpoint = "https://api.mobizon.kz/service/message/sendsmsmessage"
	}
	return &SMSSender{Endpoint: endpoint, APIKey: apiKey, Client: http.DefaultClient}
}

func (s *SMSSender) SendSMS(ctx context.Context, phone, text string) error {
	data := url.Values{}
	data.Set("apiKey", s.APIKey)
	data.Set("recipient", phone)
	data.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sms response: %v", err)
	}

	var result struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse sms response: %v", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("sms gateway error: %s (code %d)", result.Message, result.Code)
	}
	return nil
}
