package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGraphClient(t *testing.T, handler http.Handler) *GraphClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGraphClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithTimezone("UTC"),
	)
	if err != nil {
		t.Fatalf("NewGraphClient failed: %v", err)
	}
	return g
}

func TestGraphSearchMapsUsers(t *testing.T) {
	g := newTestGraphClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/users") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"value":[
			{"displayName":"Saad Khan","mail":"saad.khan@dpl.com","department":"Engineering","id":"u-saad"},
			{"displayName":"Sara Ahmed","mail":"sara.ahmed@dpl.com","jobTitle":"Designer","id":"u-sara"}
		]}`))
	}))

	got, err := g.Search(context.Background(), "saad")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Email != "saad.khan@dpl.com" {
		t.Errorf("Email = %q, want the mail field mapped", got[0].Email)
	}
	if got[0].Department != "Engineering" || got[1].JobTitle != "Designer" {
		t.Errorf("profile fields not mapped: %+v", got)
	}
}

func TestGraphMeetingsForParsesEvents(t *testing.T) {
	var gotPrefer string
	g := newTestGraphClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		w.Write([]byte(`{"value":[
			{"subject":"Quarterly review",
			 "start":{"dateTime":"2025-03-10T11:30:00.0000000"},
			 "end":{"dateTime":"2025-03-10T12:00:00.0000000"},
			 "attendees":[{"emailAddress":{"address":"hina@client.com"}},{"emailAddress":{"address":"saad.khan@dpl.com"}}]},
			{"subject":"Broken event",
			 "start":{"dateTime":"not-a-time"},
			 "end":{"dateTime":"2025-03-10T13:00:00"}}
		]}`))
	}))

	day := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	meetings, err := g.MeetingsFor(context.Background(), "saad.khan@dpl.com", day)
	if err != nil {
		t.Fatalf("MeetingsFor failed: %v", err)
	}
	if len(meetings) != 1 {
		t.Fatalf("got %d meetings, want 1 (unparseable event skipped)", len(meetings))
	}
	m := meetings[0]
	if m.Subject != "Quarterly review" {
		t.Errorf("Subject = %q", m.Subject)
	}
	want := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)
	if !m.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", m.Start, want)
	}
	if !m.HasAttendee("HINA@CLIENT.COM") {
		t.Errorf("attendees = %v, want case-insensitive match", m.Attendees)
	}
	if !strings.Contains(gotPrefer, "outlook.timezone") {
		t.Errorf("Prefer header = %q, want outlook.timezone", gotPrefer)
	}
}

func TestGraphCreateEvent(t *testing.T) {
	var gotPath string
	var gotBody graphEventRequest
	g := newTestGraphClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	start := time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC)
	if err := g.CreateEvent(context.Background(), "saad.khan@dpl.com", "Ali Khan", "Interview", start); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if gotPath != "/users/saad.khan@dpl.com/events" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.Subject != "Meeting with Ali Khan - Interview" {
		t.Errorf("subject = %q", gotBody.Subject)
	}
	if gotBody.Start.DateTime != "2025-03-10T11:05:00" || gotBody.Start.TimeZone != "UTC" {
		t.Errorf("start = %+v", gotBody.Start)
	}
	if gotBody.End.DateTime != "2025-03-10T11:30:00" {
		t.Errorf("end = %q, want start plus 25 minutes", gotBody.End.DateTime)
	}
	if len(gotBody.Attendees) != 1 || gotBody.Attendees[0].EmailAddress.Address != "saad.khan@dpl.com" {
		t.Errorf("attendees = %+v", gotBody.Attendees)
	}
	if !gotBody.IsOnlineMeeting || gotBody.OnlineMeetingProvider != "teamsForBusiness" {
		t.Errorf("online meeting fields wrong: %+v", gotBody)
	}
	if gotBody.ReminderMinutesBeforeStart != 15 {
		t.Errorf("reminder = %d, want 15", gotBody.ReminderMinutesBeforeStart)
	}
	if gotBody.Location.DisplayName != "DPL Office" {
		t.Errorf("location = %q", gotBody.Location.DisplayName)
	}
}

func TestGraphCreateEventErrorSurfaces(t *testing.T) {
	g := newTestGraphClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := g.CreateEvent(ctx, "saad.khan@dpl.com", "Ali Khan", "Interview", time.Now())
	if err == nil {
		t.Error("expected error from a rejecting backend")
	}
}

func TestGraphServerErrorSurfaces(t *testing.T) {
	g := newTestGraphClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))

	// The deadline cuts the retry backoff short.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := g.Search(ctx, "saad"); err == nil {
		t.Error("expected error from a failing backend")
	}
}

func TestGraphClientRejectsBadTimezone(t *testing.T) {
	_, err := NewGraphClient(
		WithHTTPClient(http.DefaultClient),
		WithTimezone("Not/AZone"),
	)
	if err == nil {
		t.Error("expected error for an invalid timezone")
	}
}

func TestParseGraphTimeFormats(t *testing.T) {
	g := newTestGraphClient(t, http.NewServeMux())
	cases := []string{"2025-03-10T11:30:00.0000000", "2025-03-10T11:30:00"}
	want := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)
	for _, s := range cases {
		got, err := g.parseGraphTime(s)
		if err != nil {
			t.Errorf("parseGraphTime(%q) failed: %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseGraphTime(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := g.parseGraphTime("10/03/2025 11:30"); err == nil {
		t.Error("expected error for an unrecognized timestamp")
	}
}
