package directory

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
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	"github.com/bilal1975873/DPL-RECEP-back/internal/util"
)

// DefaultBaseURL is the Microsoft Graph API endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// DefaultTimezone is the IANA timezone used for calendar day bounds when none
// is configured.
const DefaultTimezone = "Asia/Karachi"

// Retry policy for Graph requests.
const (
	graphRetryAttempts = 3
	graphRetryInitial  = 2 * time.Second
)

// Opts holds configuration options for the Graph client.
type Opts struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timezone     string
	HTTPClient   *http.Client
}

// Option defines a configuration option for the Graph client.
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

func WithBaseURL(base string) Option {
	return func(o *Opts) { o.BaseURL = base }
}

func WithTimezone(tz string) Option {
	return func(o *Opts) { o.Timezone = tz }
}

// WithHTTPClient injects a pre-authenticated HTTP client, bypassing the
// client-credentials flow. Used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// GraphClient talks to Microsoft Graph for directory and calendar lookups.
// It implements both Directory and Calendar.
type GraphClient struct {
	httpClient *http.Client
	baseURL    string
	loc        *time.Location
}

// NewGraphClient creates a Graph client authenticating with the
// client-credentials flow. Credentials fall back to the GRAPH_TENANT_ID,
// GRAPH_CLIENT_ID and GRAPH_CLIENT_SECRET environment variables.
func NewGraphClient(opts ...Option) (*GraphClient, error) {
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
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("RECEPTION_TIMEZONE")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	slog.Debug("Graph client config loaded",
		"TenantID_set", cfg.TenantID != "",
		"ClientID_set", cfg.ClientID != "",
		"ClientSecret_set", cfg.ClientSecret != "",
		"timezone", cfg.Timezone)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
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

	return &GraphClient{httpClient: httpClient, baseURL: cfg.BaseURL, loc: loc}, nil
}

// graphUser is the Graph wire shape for a directory entry.
type graphUser struct {
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail"`
	Department  string `json:"department"`
	JobTitle    string `json:"jobTitle"`
	ID          string `json:"id"`
}

// Search fetches the organization roster. Graph does not offer fuzzy matching,
// so the fragment is ignored here and scored locally by the caller.
func (g *GraphClient) Search(ctx context.Context, fragment string) ([]models.EmployeeCandidate, error) {
	endpoint := g.baseURL + "/users?$select=displayName,mail,department,jobTitle,id&$top=999"

	var payload struct {
		Value []graphUser `json:"value"`
	}
	if err := g.getJSON(ctx, endpoint, nil, &payload); err != nil {
		slog.Error("Graph user search failed", "error", err)
		return nil, fmt.Errorf("failed to fetch directory users: %w", err)
	}

	candidates := make([]models.EmployeeCandidate, 0, len(payload.Value))
	for _, u := range payload.Value {
		candidates = append(candidates, models.EmployeeCandidate{
			DisplayName: u.DisplayName,
			Email:       u.Mail,
			Department:  u.Department,
			JobTitle:    u.JobTitle,
			ID:          u.ID,
		})
	}
	slog.Debug("Graph user search succeeded", "count", len(candidates))
	return candidates, nil
}

// graphEvent is the Graph wire shape for a calendar event.
type graphEvent struct {
	Subject string `json:"subject"`
	Start   struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
	Attendees []struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"attendees"`
}

// MeetingsFor returns the host's calendar events for the given day, expressed
// in the client's configured timezone.
func (g *GraphClient) MeetingsFor(ctx context.Context, hostEmail string, day time.Time) ([]models.Meeting, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, g.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	endpoint := fmt.Sprintf("%s/users/%s/calendar/calendarView?startDateTime=%s&endDateTime=%s&$select=subject,start,end,attendees",
		g.baseURL, url.PathEscape(hostEmail),
		url.QueryEscape(dayStart.Format(time.RFC3339)),
		url.QueryEscape(dayEnd.Format(time.RFC3339)))

	headers := map[string]string{
		"Prefer": fmt.Sprintf(`outlook.timezone="%s"`, g.loc.String()),
	}

	var payload struct {
		Value []graphEvent `json:"value"`
	}
	if err := g.getJSON(ctx, endpoint, headers, &payload); err != nil {
		slog.Error("Graph calendar lookup failed", "error", err, "host", hostEmail)
		return nil, fmt.Errorf("failed to fetch calendar for %s: %w", hostEmail, err)
	}

	meetings := make([]models.Meeting, 0, len(payload.Value))
	for _, ev := range payload.Value {
		start, err := g.parseGraphTime(ev.Start.DateTime)
		if err != nil {
			slog.Error("Skipping event with unparseable start", "error", err, "subject", ev.Subject)
			continue
		}
		end, err := g.parseGraphTime(ev.End.DateTime)
		if err != nil {
			end = start
		}
		m := models.Meeting{Start: start, End: end, Subject: ev.Subject}
		for _, a := range ev.Attendees {
			if a.EmailAddress.Address != "" {
				m.Attendees = append(m.Attendees, a.EmailAddress.Address)
			}
		}
		meetings = append(meetings, m)
	}
	slog.Debug("Graph calendar lookup succeeded", "host", hostEmail, "count", len(meetings))
	return meetings, nil
}

// Calendar hold parameters for walk-in visits.
const (
	eventDuration        = 25 * time.Minute
	eventReminderMinutes = 15
	eventLocation        = "DPL Office"
)

// graphDateTime is the Graph wire shape for an event boundary.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// graphAttendee is the Graph wire shape for an event attendee.
type graphAttendee struct {
	EmailAddress struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	} `json:"emailAddress"`
	Type string `json:"type"`
}

// graphEventRequest is the Graph wire shape for event creation.
type graphEventRequest struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	Start    graphDateTime `json:"start"`
	End      graphDateTime `json:"end"`
	Location struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	Attendees                  []graphAttendee `json:"attendees"`
	IsOnlineMeeting            bool            `json:"isOnlineMeeting"`
	OnlineMeetingProvider      string          `json:"onlineMeetingProvider"`
	AllowNewTimeProposals      bool            `json:"allowNewTimeProposals"`
	ReminderMinutesBeforeStart int             `json:"reminderMinutesBeforeStart"`
}

// CreateEvent places a short Teams meeting on the host's calendar for a
// walk-in visit: 25 minutes from the given start, with a 15-minute reminder.
func (g *GraphClient) CreateEvent(ctx context.Context, hostEmail, visitorName, purpose string, start time.Time) error {
	start = start.UTC()
	end := start.Add(eventDuration)

	var ev graphEventRequest
	ev.Subject = fmt.Sprintf("Meeting with %s - %s", visitorName, purpose)
	ev.Body.ContentType = "HTML"
	ev.Body.Content = fmt.Sprintf(
		"<h2>Guest Visit Details</h2><p><strong>Guest Name:</strong> %s</p><p><strong>Visit Purpose:</strong> %s</p><p><strong>Meeting Duration:</strong> %d minutes</p>",
		visitorName, purpose, int(eventDuration.Minutes()))
	ev.Start = graphDateTime{DateTime: start.Format("2006-01-02T15:04:05"), TimeZone: "UTC"}
	ev.End = graphDateTime{DateTime: end.Format("2006-01-02T15:04:05"), TimeZone: "UTC"}
	ev.Location.DisplayName = eventLocation
	var host graphAttendee
	host.EmailAddress.Address = hostEmail
	host.EmailAddress.Name = hostEmail
	host.Type = "required"
	ev.Attendees = []graphAttendee{host}
	ev.IsOnlineMeeting = true
	ev.OnlineMeetingProvider = "teamsForBusiness"
	ev.ReminderMinutesBeforeStart = eventReminderMinutes

	endpoint := fmt.Sprintf("%s/users/%s/events", g.baseURL, url.PathEscape(hostEmail))
	if err := g.postJSON(ctx, endpoint, ev); err != nil {
		slog.Error("Graph event creation failed", "error", err, "host", hostEmail)
		return fmt.Errorf("failed to create calendar event for %s: %w", hostEmail, err)
	}
	slog.Debug("Graph event created", "host", hostEmail, "subject", ev.Subject)
	return nil
}

// parseGraphTime parses Graph's fractional-second timestamp format in the
// client's timezone.
func (g *GraphClient) parseGraphTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.0000000", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, g.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// postJSON performs a POST with bounded retry, treating any 2xx status as
// success.
func (g *GraphClient) postJSON(ctx context.Context, endpoint string, in interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return util.Retry(ctx, graphRetryAttempts, graphRetryInitial, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("graph request returned %d: %s", resp.StatusCode, string(body))
		}
		return nil
	})
}

// getJSON performs a GET with bounded retry and decodes the JSON response
// into out.
func (g *GraphClient) getJSON(ctx context.Context, endpoint string, headers map[string]string, out interface{}) error {
	return util.Retry(ctx, graphRetryAttempts, graphRetryInitial, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("graph request returned %d: %s", resp.StatusCode, string(body))
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}
