// Package testutil provides common test utilities and helpers for reception
// service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bilal1975873/DPL-RECEP-back/internal/api"
	"github.com/bilal1975873/DPL-RECEP-back/internal/directory"
	"github.com/bilal1975873/DPL-RECEP-back/internal/flow"
	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	"github.com/bilal1975873/DPL-RECEP-back/internal/notify"
	"github.com/bilal1975873/DPL-RECEP-back/internal/store"
)

// TestRoster is the fixed employee directory used across tests.
func TestRoster() []models.EmployeeCandidate {
	return []models.EmployeeCandidate{
		{DisplayName: "Saad Khan", Email: "saad.khan@dpl.com", Department: "Engineering", ID: "u-saad"},
		{DisplayName: "Sara Ahmed", Email: "sara.ahmed@dpl.com", Department: "Design", ID: "u-sara"},
		{DisplayName: "Bilal Hassan", Email: "bilal.hassan@dpl.com", Department: "Operations", ID: "u-bilal"},
	}
}

// TestDeps bundles the in-memory collaborators behind a test server so tests
// can inspect side effects.
type TestDeps struct {
	Store    *store.InMemoryStore
	Notifier *notify.MockNotifier
	Calendar *directory.StaticCalendar
}

// NewTestServer creates a test API server with in-memory dependencies.
// This centralizes the test server creation logic used across multiple test files.
func NewTestServer(t *testing.T) (*api.Server, *TestDeps) {
	t.Helper()
	deps := &TestDeps{
		Store:    store.NewInMemoryStore(),
		Notifier: notify.NewMockNotifier(),
		Calendar: &directory.StaticCalendar{},
	}
	engine, err := flow.NewEngine(
		flow.WithStore(deps.Store),
		flow.WithDirectory(directory.NewStaticDirectory(TestRoster())),
		flow.WithCalendar(deps.Calendar),
		flow.WithNotifier(deps.Notifier),
	)
	if err != nil {
		t.Fatalf("failed to build test engine: %v", err)
	}
	server, err := api.NewServer(engine, deps.Store)
	if err != nil {
		t.Fatalf("failed to build test server: %v", err)
	}
	return server, deps
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// AssertVisitCount validates the number of visits in the store matches expected.
func AssertVisitCount(t *testing.T, st store.Store, expected int, context string) {
	t.Helper()
	visits, err := st.GetVisits()
	if err != nil {
		t.Fatalf("%s: failed to get visits: %v", context, err)
	}
	if len(visits) != expected {
		t.Errorf("%s: expected %d visits, got %d", context, expected, len(visits))
	}
}

// SeedTestVisit adds one completed visit record to the store for testing.
func SeedTestVisit(t *testing.T, st store.Store, cnic string) models.Visitor {
	t.Helper()
	v := models.Visitor{
		Type:         models.VisitorTypeGuest,
		FullName:     "Ali Khan",
		CNIC:         cnic,
		Phone:        "03001234567",
		Host:         "Saad Khan",
		Purpose:      "Meeting",
		TotalMembers: 1,
	}
	if err := st.AddVisit(v); err != nil {
		t.Fatalf("failed to seed test visit: %v", err)
	}
	return v
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t *testing.T, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
}
