package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// MeetingWindow is how far from the current time a meeting's start may be and
// still count as the visitor's appointment.
const MeetingWindow = time.Hour

// stepScheduledConfirm handles the pre-scheduled review step. Unlike the other
// confirm steps it offers "back" to re-enter the host, and a session that lost
// its meeting diverts to the fallback choice.
func (e *Engine) stepScheduledConfirm(ctx context.Context, st *models.DialogState, input string) (string, error) {
	switch strings.ToLower(input) {
	case "confirm":
		if st.Purpose == "" && st.ScheduledMeeting != nil {
			st.Purpose = st.ScheduledMeeting.Subject
		}
		return e.complete(ctx, st)
	case "back":
		st.ScheduledMeeting = nil
		st.HostRequested = ""
		st.HostConfirmed = ""
		st.HostEmail = ""
		return e.enter(ctx, st, StepScheduledHost), nil
	default:
		if st.ScheduledMeeting != nil {
			return meetingFoundPrompt(st.ScheduledMeeting), nil
		}
		st.CurrentStep = StepScheduledFallback
		return MsgScheduledFallback, nil
	}
}

// lookupMeeting queries the confirmed host's calendar for today and picks the
// meeting whose attendee list contains the visitor's email and whose start is
// within the meeting window of now. No match, a missing calendar, or a lookup
// failure all divert to the fallback choice.
func (e *Engine) lookupMeeting(ctx context.Context, st *models.DialogState) string {
	if e.calendar != nil {
		now := e.now()
		meetings, err := e.calendar.MeetingsFor(ctx, st.HostEmail, now)
		if err != nil {
			slog.Error("Calendar lookup failed", "error", err, "host", st.HostEmail)
		}
		for i := range meetings {
			m := meetings[i]
			if !m.HasAttendee(st.Email) {
				continue
			}
			diff := m.Start.Sub(now)
			if diff < -MeetingWindow || diff > MeetingWindow {
				continue
			}
			st.ScheduledMeeting = &m
			st.CurrentStep = ScheduledFlow.NextStep(StepScheduledHost)
			slog.Debug("Scheduled meeting found", "host", st.HostEmail, "subject", m.Subject)
			return meetingFoundPrompt(&m)
		}
	}
	st.CurrentStep = StepScheduledFallback
	return MsgScheduledFallback
}

// stepScheduledFallback handles the no-meeting-found choice: continue as a
// guest with the collected fields, or re-enter the host name.
func (e *Engine) stepScheduledFallback(ctx context.Context, st *models.DialogState, input string) string {
	switch input {
	case "1":
		// The host was already confirmed during resolution; only the purpose
		// is missing from the guest flow's required fields.
		st.VisitorType = models.VisitorTypeGuest
		st.ScheduledMeeting = nil
		return e.enter(ctx, st, StepPurpose)
	case "2":
		st.ScheduledMeeting = nil
		st.HostRequested = ""
		st.HostConfirmed = ""
		st.HostEmail = ""
		st.VisitorType = models.VisitorTypePreScheduled
		return e.enter(ctx, st, StepScheduledHost)
	default:
		return MsgScheduledFallback
	}
}
