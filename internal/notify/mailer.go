package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is one outbound mail.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers messages. Implementations must be safe for use from the
// notifier worker goroutine.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailConfig configures the HTTP mail relay client.
type MailConfig struct {
	APIURL  string
	APIKey  string
	From    string
	To      string
	Timeout time.Duration
}

// MailConfigFromEnv reads MAIL_* environment variables.
func MailConfigFromEnv() MailConfig {
	timeoutSec := 30
	if v := os.Getenv("MAIL_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutSec = n
		}
	}
	return MailConfig{
		APIURL:  strings.TrimSpace(os.Getenv("MAIL_API_URL")),
		APIKey:  strings.TrimSpace(os.Getenv("MAIL_API_KEY")),
		From:    strings.TrimSpace(os.Getenv("MAIL_FROM")),
		To:      strings.TrimSpace(os.Getenv("MAIL_TO")),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

// HTTPMailer posts messages as JSON to a mail relay API.
type HTTPMailer struct {
	cfg        MailConfig
	log        zerolog.Logger
	httpClient *http.Client
}

// NewHTTPMailer returns a mailer for the given relay config.
func NewHTTPMailer(cfg MailConfig, logger zerolog.Logger) (*HTTPMailer, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("mail API URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPMailer{
		cfg: cfg,
		log: logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Send posts the message to the relay.
func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.cfg.From
	}
	if msg.To == "" {
		msg.To = m.cfg.To
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}

	m.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Mail delivered to relay")
	return nil
}

// NopMailer logs and discards messages. Used when no relay is configured.
type NopMailer struct {
	log zerolog.Logger
}

// NewNopMailer returns a mailer that drops everything.
func NewNopMailer(logger zerolog.Logger) *NopMailer {
	return &NopMailer{log: logger}
}

func (m *NopMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().Str("subject", msg.Subject).Msg("Mail relay not configured, discarding notification")
	return nil
}
