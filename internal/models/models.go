// Package models defines the core data structures for the reception intake
// service.
//
// It includes the visitor record persisted at registration, the candidate and
// meeting shapes returned by the directory and calendar collaborators, and the
// JSON envelope types shared by the HTTP API.
package models

import (
	"errors"
	"strings"
	"time"
)

// VisitorType identifies which registration flow governs a session.
type VisitorType string

const (
	// VisitorTypeGuest is a walk-in guest visiting an employee.
	VisitorTypeGuest VisitorType = "guest"
	// VisitorTypeVendor is a supplier representative.
	VisitorTypeVendor VisitorType = "vendor"
	// VisitorTypePreScheduled is a visitor with a calendar appointment.
	VisitorTypePreScheduled VisitorType = "prescheduled"
)

// IsValidVisitorType checks if the given visitor type is supported.
func IsValidVisitorType(vt VisitorType) bool {
	switch vt {
	case VisitorTypeGuest, VisitorTypeVendor, VisitorTypePreScheduled:
		return true
	default:
		return false
	}
}

// Error variables for better error handling and testability
var (
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrEmptyCNIC       = errors.New("cnic cannot be empty")
	ErrInvalidVisitor  = errors.New("visitor record is incomplete")
)

// GroupMember holds the identity fields collected for one additional member of
// a group visit. Member 1 is the primary visitor and lives on the Visitor
// record itself, so this list starts at member 2.
type GroupMember struct {
	Name  string `json:"name"`
	CNIC  string `json:"cnic,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Visitor is the completed visit record handed to the persistence layer once a
// session reaches the confirm step.
type Visitor struct {
	Type          VisitorType   `json:"type"`
	FullName      string        `json:"full_name"`
	CNIC          string        `json:"cnic"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email,omitempty"`
	Host          string        `json:"host"`
	Purpose       string        `json:"purpose"`
	EntryTime     time.Time     `json:"entry_time"`
	ExitTime      *time.Time    `json:"exit_time,omitempty"`
	IsGroupVisit  bool          `json:"is_group_visit"`
	GroupID       string        `json:"group_id,omitempty"`
	TotalMembers  int           `json:"total_members"`
	GroupMembers  []GroupMember `json:"group_members"`
	ScheduledTime string        `json:"scheduled_time,omitempty"`
}

// Validate checks the invariants every persisted visit record must satisfy.
func (v *Visitor) Validate() error {
	if !IsValidVisitorType(v.Type) {
		return ErrInvalidVisitor
	}
	if v.CNIC == "" {
		return ErrEmptyCNIC
	}
	if v.FullName == "" || v.Phone == "" {
		return ErrInvalidVisitor
	}
	if v.TotalMembers < 1 {
		return ErrInvalidVisitor
	}
	if len(v.GroupMembers) > v.TotalMembers-1 {
		return ErrInvalidVisitor
	}
	return nil
}

// EmployeeCandidate is one directory entry considered as a possible host.
// Produced by the employee resolver and never persisted beyond the session.
type EmployeeCandidate struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Department  string `json:"department,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
	ID          string `json:"id,omitempty"`
}

// Meeting is one calendar event returned by the calendar collaborator.
type Meeting struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Subject   string    `json:"subject"`
	Attendees []string  `json:"attendees"`
}

// HasAttendee reports whether the meeting's attendee list contains the given
// email address, compared case-insensitively.
func (m *Meeting) HasAttendee(email string) bool {
	for _, a := range m.Attendees {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// TurnRequest is the payload of the turn endpoint. The caller supplies the
// entire prior dialog state with every turn; the server holds nothing between
// calls.
type TurnRequest struct {
	Message     string       `json:"message"`
	CurrentStep string       `json:"current_step"`
	VisitorInfo *DialogState `json:"visitor_info,omitempty"`
}

// TurnResponse carries the reply text plus the full updated state the caller
// must echo back on the next turn.
type TurnResponse struct {
	Response    string       `json:"response"`
	NextStep    string       `json:"next_step"`
	VisitorInfo *DialogState `json:"visitor_info"`
}
