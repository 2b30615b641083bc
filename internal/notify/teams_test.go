package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// graphStub is a minimal Graph API double covering the user lookup, chat
// creation and message post the Teams notifier performs.
type graphStub struct {
	chatsCreated atomic.Int64
	messages     atomic.Int64
	lastBody     atomic.Value
}

func (g *graphStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimPrefix(r.URL.Path, "/users/")
		json.NewEncoder(w).Encode(map[string]string{"id": "id-" + email})
	})
	mux.HandleFunc("/chats", func(w http.ResponseWriter, r *http.Request) {
		g.chatsCreated.Add(1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "chat-1"})
	})
	mux.HandleFunc("/chats/chat-1/messages", func(w http.ResponseWriter, r *http.Request) {
		g.messages.Add(1)
		var body struct {
			Body struct {
				Content string `json:"content"`
			} `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			g.lastBody.Store(body.Body.Content)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
	})
	return mux
}

func newStubNotifier(t *testing.T) (*TeamsNotifier, *graphStub) {
	t.Helper()
	stub := &graphStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	n, err := NewTeamsNotifier(
		WithSenderEmail("reception@dpl.com"),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewTeamsNotifier failed: %v", err)
	}
	return n, stub
}

func TestTeamsNotifySendsMessage(t *testing.T) {
	n, stub := newStubNotifier(t)
	host := models.EmployeeCandidate{DisplayName: "Saad Khan", Email: "saad.khan@dpl.com"}

	if err := n.Notify(context.Background(), host, "Ali Khan has arrived at reception to meet you. Purpose: Meeting"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if got := stub.messages.Load(); got != 1 {
		t.Errorf("posted %d messages, want 1", got)
	}
	if got, _ := stub.lastBody.Load().(string); !strings.Contains(got, "Ali Khan") {
		t.Errorf("message body = %q, want arrival text", got)
	}
}

func TestTeamsNotifyReusesChat(t *testing.T) {
	n, stub := newStubNotifier(t)
	host := models.EmployeeCandidate{DisplayName: "Saad Khan", Email: "saad.khan@dpl.com"}

	for i := 0; i < 3; i++ {
		if err := n.Notify(context.Background(), host, "arrival"); err != nil {
			t.Fatalf("Notify %d failed: %v", i, err)
		}
	}
	if got := stub.chatsCreated.Load(); got != 1 {
		t.Errorf("created %d chats, want 1", got)
	}
	if got := stub.messages.Load(); got != 3 {
		t.Errorf("posted %d messages, want 3", got)
	}
}

func TestTeamsNotifyConcurrentSamePair(t *testing.T) {
	n, stub := newStubNotifier(t)
	host := models.EmployeeCandidate{DisplayName: "Saad Khan", Email: "saad.khan@dpl.com", ID: "id-saad"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := n.Notify(context.Background(), host, "arrival"); err != nil {
				t.Errorf("Notify failed: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := stub.chatsCreated.Load(); got != 1 {
		t.Errorf("created %d chats under concurrency, want 1", got)
	}
}

func TestTeamsNotifierRequiresSender(t *testing.T) {
	t.Setenv("TEAMS_SENDER_EMAIL", "")
	if _, err := NewTeamsNotifier(WithHTTPClient(http.DefaultClient)); err == nil {
		t.Error("expected error when sender email is missing")
	}
}

func TestMockNotifierRecords(t *testing.T) {
	m := NewMockNotifier()
	host := models.EmployeeCandidate{DisplayName: "Sara Ahmed", Email: "sara.ahmed@dpl.com"}
	if err := m.Notify(context.Background(), host, "hello"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	sent := m.Notifications()
	if len(sent) != 1 || sent[0].Host.Email != "sara.ahmed@dpl.com" || sent[0].Text != "hello" {
		t.Errorf("recorded notifications = %+v", sent)
	}
}
