package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("konfigurasi EmailJS belum lengkap")

// Sender delivers one templated email.
type Sender interface {
	Send(ctx context.Context, templateID string, params map[string]any) error
}

// EmailJS posts template sends to the EmailJS REST API.
type EmailJS struct {
	Endpoint   string
	ServiceID  string
	PublicKey  string
	HTTPClient *http.Client
}

func NewEmailJS(endpoint, serviceID, publicKey string) *EmailJS {
	return &EmailJS{
		Endpoint:  endpoint,
		ServiceID: serviceID,
		PublicKey: publicKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

func (e *EmailJS) Send(ctx context.Context, templateID string, params map[string]any) error {
	if e == nil || e.ServiceID == "" || e.PublicKey == "" || templateID == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(sendRequest{
		ServiceID:      e.ServiceID,
		TemplateID:     templateID,
		UserID:         e.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		txt, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("EmailJS send failed: %s", strings.TrimSpace(string(txt)))
	}
	return nil
}
