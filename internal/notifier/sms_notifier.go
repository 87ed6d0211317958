package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	config "github.com/Keoroanthony/go-storefront/configs"
)

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// AfricasTalking sends SMS through the Africa's Talking messaging API.
type AfricasTalking struct {
	cfg    config.AfricaTalkingConfig
	client *http.Client
}

func NewAfricasTalking(cfg config.AfricaTalkingConfig, client *http.Client) *AfricasTalking {
	if client == nil {
		client = &http.Client{}
	}
	return &AfricasTalking{cfg: cfg, client: client}
}

func (a *AfricasTalking) SendSMS(ctx context.Context, to, message string) error {
	data := url.Values{}
	data.Set("username", a.cfg.Username)
	data.Set("to", to)
	data.Set("message", message)
	data.Set("from", a.cfg.SenderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if decodeErr == nil {
			log.Printf("SMS API returned error for %s: Status %d, Message: %s", to, resp.StatusCode, smsResp.SMSMessageData.Message)
		}
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode SMS response: %w", decodeErr)
	}

	log.Printf("SMS sent to %s. Message: %s", to, smsResp.SMSMessageData.Message)
	return nil
}
