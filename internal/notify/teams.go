package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// DefaultGraphBaseURL is the Microsoft Graph API endpoint used for Teams chat.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// Opts holds configuration options for the Teams notifier.
type Opts struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	SenderEmail  string
	BaseURL      string
	HTTPClient   *http.Client
}

// Option defines a configuration option for the Teams notifier.
type Option func(*Opts)

func WithTenantID(id string) Option {
	return func(o *Opts) { o.TenantID = id }
}

func WithClientID(id string) Option {
	return func(o *Opts) { o.ClientID = id }
}

func WithClientSecret(secret string) Option {
	return func(o *Opts) { o.ClientSecret = secret }
}

// WithSenderEmail sets the service account the chat messages are sent from.
func WithSenderEmail(email string) Option {
	return func(o *Opts) { o.SenderEmail = email }
}

func WithBaseURL(base string) Option {
	return func(o *Opts) { o.BaseURL = base }
}

// WithHTTPClient injects a pre-authenticated HTTP client, bypassing the
// client-credentials flow. Used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// TeamsNotifier posts arrival notifications as one-on-one Teams chat messages
// from a service account to the host. Chat IDs are cached per user pair so a
// chat is created at most once; concurrent notifications for the same pair
// reuse the first created chat.
type TeamsNotifier struct {
	httpClient  *http.Client
	baseURL     string
	senderEmail string

	mu        sync.Mutex
	senderID  string
	chatCache map[string]string // sorted "idA|idB" -> chat ID
}

// NewTeamsNotifier creates a Teams notifier authenticating with the
// client-credentials flow. Credentials fall back to the GRAPH_TENANT_ID,
// GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET and TEAMS_SENDER_EMAIL environment
// variables.
func NewTeamsNotifier(opts ...Option) (*TeamsNotifier, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.TenantID == "" {
		cfg.TenantID = os.Getenv("GRAPH_TENANT_ID")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GRAPH_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GRAPH_CLIENT_SECRET")
	}
	if cfg.SenderEmail == "" {
		cfg.SenderEmail = os.Getenv("TEAMS_SENDER_EMAIL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGraphBaseURL
	}
	slog.Debug("Teams notifier config loaded",
		"TenantID_set", cfg.TenantID != "",
		"ClientID_set", cfg.ClientID != "",
		"ClientSecret_set", cfg.ClientSecret != "",
		"SenderEmail_set", cfg.SenderEmail != "")

	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email must be provided")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("tenant ID, client ID and client secret must be provided")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		}
		httpClient = cc.Client(context.Background())
	}

	return &TeamsNotifier{
		httpClient:  httpClient,
		baseURL:     cfg.BaseURL,
		senderEmail: cfg.SenderEmail,
		chatCache:   make(map[string]string),
	}, nil
}

// Notify posts the text to a one-on-one chat between the service account and
// the host.
func (t *TeamsNotifier) Notify(ctx context.Context, host models.EmployeeCandidate, text string) error {
	hostID := host.ID
	if hostID == "" {
		var err error
		hostID, err = t.userID(ctx, host.Email)
		if err != nil {
			slog.Error("Teams notify: host lookup failed", "error", err, "host", host.Email)
			return fmt.Errorf("failed to resolve host %s: %w", host.Email, err)
		}
	}

	senderID, err := t.resolveSenderID(ctx)
	if err != nil {
		slog.Error("Teams notify: sender lookup failed", "error", err)
		return err
	}

	chatID, err := t.createOrGetChat(ctx, senderID, hostID)
	if err != nil {
		slog.Error("Teams notify: chat creation failed", "error", err, "host", host.Email)
		return err
	}

	if err := t.postMessage(ctx, chatID, text); err != nil {
		slog.Error("Teams notify: message post failed", "error", err, "host", host.Email)
		return err
	}
	slog.Debug("Teams notification sent", "host", host.Email)
	return nil
}

// resolveSenderID looks up and caches the service account's user ID.
func (t *TeamsNotifier) resolveSenderID(ctx context.Context) (string, error) {
	t.mu.Lock()
	cached := t.senderID
	t.mu.Unlock()
	if cached != "" {
		return cached, nil
	}
	id, err := t.userID(ctx, t.senderEmail)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sender %s: %w", t.senderEmail, err)
	}
	t.mu.Lock()
	t.senderID = id
	t.mu.Unlock()
	return id, nil
}

func (t *TeamsNotifier) userID(ctx context.Context, email string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s?$select=id", t.baseURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", graphError(resp)
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.ID == "" {
		return "", fmt.Errorf("no user ID returned for %s", email)
	}
	return payload.ID, nil
}

// createOrGetChat returns the one-on-one chat for the given user pair,
// creating it on first use. The cache lock is held across creation so only
// one chat is ever created per pair.
func (t *TeamsNotifier) createOrGetChat(ctx context.Context, senderID, hostID string) (string, error) {
	key := chatKey(senderID, hostID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.chatCache[key]; ok {
		return id, nil
	}

	body := map[string]interface{}{
		"chatType": "oneOnOne",
		"members": []map[string]interface{}{
			chatMember(senderID, t.baseURL),
			chatMember(hostID, t.baseURL),
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/chats", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", graphError(resp)
	}
	var chat struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", err
	}
	if chat.ID == "" {
		return "", fmt.Errorf("no chat ID returned")
	}
	t.chatCache[key] = chat.ID
	return chat.ID, nil
}

func (t *TeamsNotifier) postMessage(ctx context.Context, chatID, text string) error {
	body := map[string]interface{}{
		"body": map[string]string{
			"contentType": "text",
			"content":     text,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/chats/%s/messages", t.baseURL, url.PathEscape(chatID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return graphError(resp)
	}
	return nil
}

func chatMember(userID, baseURL string) map[string]interface{} {
	return map[string]interface{}{
		"@odata.type":     "#microsoft.graph.aadUserConversationMember",
		"roles":           []string{"owner"},
		"user@odata.bind": fmt.Sprintf("%s/users('%s')", baseURL, userID),
	}
}

// chatKey builds the cache key for a user pair, order-independent.
func chatKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func graphError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("graph request returned %d: %s", resp.StatusCode, string(body))
}
