// Package notify delivers visitor-arrival notifications to hosts.
package notify

import (
	"context"
	"sync"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// Notifier sends an arrival notification to the given host. Implementations
// must be safe for concurrent use; callers treat delivery as best-effort.
type Notifier interface {
	Notify(ctx context.Context, host models.EmployeeCandidate, text string) error
}

// SentNotification records one delivered notification in the mock notifier.
type SentNotification struct {
	Host models.EmployeeCandidate
	Text string
}

// MockNotifier records notifications for tests.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
	Err  error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, host models.EmployeeCandidate, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotification{Host: host, Text: text})
	return nil
}

// Notifications returns a copy of the recorded notifications.
func (m *MockNotifier) Notifications() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.Sent))
	copy(out, m.Sent)
	return out
}
