package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// SMSOpts holds configuration options for the Twilio SMS notifier.
type SMSOpts struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	AdminNumber string
}

// SMSOption defines a configuration option for the Twilio SMS notifier.
type SMSOption func(*SMSOpts)

func WithAccountSID(sid string) SMSOption {
	return func(o *SMSOpts) { o.AccountSID = sid }
}

func WithAuthToken(token string) SMSOption {
	return func(o *SMSOpts) { o.AuthToken = token }
}

func WithFromNumber(from string) SMSOption {
	return func(o *SMSOpts) { o.FromNumber = from }
}

// WithAdminNumber sets the reception desk number that receives a copy when a
// host has no phone on file.
func WithAdminNumber(num string) SMSOption {
	return func(o *SMSOpts) { o.AdminNumber = num }
}

// SMSNotifier sends arrival notifications over Twilio SMS. It is the fallback
// channel when Teams is not configured.
type SMSNotifier struct {
	client      *twilio.RestClient
	fromNumber  string
	adminNumber string
}

// NewSMSNotifier creates a Twilio-backed SMS notifier. Credentials fall back
// to the TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and
// RECEPTION_ADMIN_NUMBER environment variables.
func NewSMSNotifier(opts ...SMSOption) (*SMSNotifier, error) {
	var cfg SMSOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.AdminNumber == "" {
		cfg.AdminNumber = os.Getenv("RECEPTION_ADMIN_NUMBER")
	}
	slog.Debug("Twilio SMS notifier config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "",
		"AdminNumber_set", cfg.AdminNumber != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("from number must be provided")
	}
	if cfg.AdminNumber == "" {
		return nil, fmt.Errorf("admin number must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &SMSNotifier{
		client:      client,
		fromNumber:  cfg.FromNumber,
		adminNumber: cfg.AdminNumber,
	}, nil
}

// Notify sends the text to the reception admin number, prefixed with the
// host's name so the desk can relay it.
func (s *SMSNotifier) Notify(ctx context.Context, host models.EmployeeCandidate, text string) error {
	body := fmt.Sprintf("[For %s] %s", host.DisplayName, text)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.adminNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio SMS notify failed", "to", s.adminNumber, "error", err)
		return fmt.Errorf("failed to send SMS notification: %w", err)
	}
	slog.Debug("Twilio SMS notification sent", "to", s.adminNumber, "host", host.Email)
	return nil
}
