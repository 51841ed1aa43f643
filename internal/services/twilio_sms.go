package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioSMS sends verification PINs through the Twilio Messages API.
type TwilioSMS struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	HTTPClient *http.Client
	Endpoint   string
}

func NewTwilioSMS(accountSID string, authToken string, fromNumber string) *TwilioSMS {
	sid := strings.TrimSpace(accountSID)
	return &TwilioSMS{
		AccountSID: sid,
		AuthToken:  strings.TrimSpace(authToken),
		FromNumber: strings.TrimSpace(fromNumber),
		Endpoint:   fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", sid),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *TwilioSMS) SendPin(ctx context.Context, phone string, pin string) error {
	if t == nil {
		return fmt.Errorf("twilio sms not configured")
	}
	if t.AccountSID == "" {
		return fmt.Errorf("missing TWILIO_ACCOUNT_SID")
	}
	if t.AuthToken == "" {
		return fmt.Errorf("missing TWILIO_AUTH_TOKEN")
	}
	if t.FromNumber == "" {
		return fmt.Errorf("missing TWILIO_FROM_NUMBER")
	}

	form := url.Values{}
	form.Set("To", strings.TrimSpace(phone))
	form.Set("From", t.FromNumber)
	form.Set("Body", fmt.Sprintf("Your Steel verification PIN is %s. It expires in 5 minutes.", pin))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("twilio send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
