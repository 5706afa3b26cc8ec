// Package sms delivers one-time passwords through the 2Factor HTTP API.
package sms

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers an OTP to a mobile number.
type Sender interface {
	SendOTP(ctx context.Context, mobile, otp string) error
}

type Config struct {
	APIKey      string
	BaseURL     string
	Template    string
	CountryCode string
	Timeout     time.Duration
}

// TwoFactorClient calls GET {base}/{key}/SMS/{country}{mobile}/{otp}/{template}.
type TwoFactorClient struct {
	cfg  Config
	http *http.Client
}

var _ Sender = (*TwoFactorClient)(nil)

func NewTwoFactorClient(cfg Config) *TwoFactorClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TwoFactorClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// URL builds the request URL for one OTP message.
func (c *TwoFactorClient) URL(mobile, otp string) string {
	return fmt.Sprintf("%s/%s/SMS/%s/%s/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.APIKey),
		url.PathEscape(c.cfg.CountryCode+mobile),
		url.PathEscape(otp),
		url.PathEscape(c.cfg.Template),
	)
}

// SendOTP makes a single best-effort attempt; there is no retry.
func (c *TwoFactorClient) SendOTP(ctx context.Context, mobile, otp string) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("sms api key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(mobile, otp), nil)
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	log.Printf("[SMS] OTP response for %s: status=%d body=%s", mask(mobile), resp.StatusCode, strings.TrimSpace(string(body)))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}
	return nil
}

func mask(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}
