package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validVisitor() Visitor {
	return Visitor{
		Type:         VisitorTypeGuest,
		FullName:     "Ali Khan",
		CNIC:         "12345-1234567-1",
		Phone:        "03001234567",
		Host:         "Saad Khan",
		Purpose:      "Meeting",
		EntryTime:    time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		TotalMembers: 1,
	}
}

func TestVisitorValidate(t *testing.T) {
	v := validVisitor()
	if err := v.Validate(); err != nil {
		t.Fatalf("valid visitor rejected: %v", err)
	}

	v = validVisitor()
	v.CNIC = ""
	if err := v.Validate(); !errors.Is(err, ErrEmptyCNIC) {
		t.Errorf("empty CNIC error = %v, want ErrEmptyCNIC", err)
	}

	v = validVisitor()
	v.Type = "alien"
	if err := v.Validate(); !errors.Is(err, ErrInvalidVisitor) {
		t.Errorf("unknown type error = %v, want ErrInvalidVisitor", err)
	}

	v = validVisitor()
	v.FullName = ""
	if err := v.Validate(); !errors.Is(err, ErrInvalidVisitor) {
		t.Errorf("missing name error = %v, want ErrInvalidVisitor", err)
	}

	v = validVisitor()
	v.TotalMembers = 0
	if err := v.Validate(); !errors.Is(err, ErrInvalidVisitor) {
		t.Errorf("zero members error = %v, want ErrInvalidVisitor", err)
	}

	// A group of 2 holds at most 1 extra member record.
	v = validVisitor()
	v.TotalMembers = 2
	v.GroupMembers = []GroupMember{{Name: "Bilal"}, {Name: "Sana"}}
	if err := v.Validate(); !errors.Is(err, ErrInvalidVisitor) {
		t.Errorf("oversized member list error = %v, want ErrInvalidVisitor", err)
	}
	v.GroupMembers = v.GroupMembers[:1]
	if err := v.Validate(); err != nil {
		t.Errorf("group of 2 with 1 extra member rejected: %v", err)
	}
}

func TestIsValidVisitorType(t *testing.T) {
	for _, vt := range []VisitorType{VisitorTypeGuest, VisitorTypeVendor, VisitorTypePreScheduled} {
		if !IsValidVisitorType(vt) {
			t.Errorf("IsValidVisitorType(%q) = false", vt)
		}
	}
	if IsValidVisitorType("walkin") {
		t.Error(`IsValidVisitorType("walkin") = true`)
	}
}

func TestMeetingHasAttendee(t *testing.T) {
	m := Meeting{Attendees: []string{"Hina@Client.com", "saad.khan@dpl.com"}}
	if !m.HasAttendee("hina@client.com") {
		t.Error("case-insensitive attendee match failed")
	}
	if m.HasAttendee("nobody@client.com") {
		t.Error("matched an absent attendee")
	}
}

func TestDialogStateJSONRoundTrip(t *testing.T) {
	st := NewDialogState()
	st.CurrentStep = "member"
	st.VisitorType = VisitorTypeGuest
	st.Name = "Ali Khan"
	st.CNIC = "12345-1234567-1"
	st.TotalMembers = 3
	st.IsGroupVisit = true
	st.GroupMembers = []GroupMember{{Name: "Bilal Raza", CNIC: "54321-7654321-2"}}
	st.Member = &MemberSubstep{Index: 3, Field: MemberFieldPhone}
	st.EmployeeSelectionMode = true
	st.EmployeeMatches = []EmployeeCandidate{{DisplayName: "Saad Khan", Email: "saad.khan@dpl.com"}}

	data, err := st.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var got DialogState
	if err := got.FromJSON(data); err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if got.CurrentStep != "member" || got.Name != "Ali Khan" || got.TotalMembers != 3 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Member == nil || got.Member.Index != 3 || got.Member.Field != MemberFieldPhone {
		t.Errorf("member sub-step lost: %+v", got.Member)
	}
	if !got.EmployeeSelectionMode || len(got.EmployeeMatches) != 1 {
		t.Errorf("selection state lost: %+v", got)
	}
	if len(got.GroupMembers) != 1 || got.GroupMembers[0].Name != "Bilal Raza" {
		t.Errorf("group members lost: %+v", got.GroupMembers)
	}
}

// The wire contract flattens the visitor fields into the state object rather
// than nesting them, so existing kiosk clients keep working.
func TestDialogStateFlattenedWireShape(t *testing.T) {
	st := NewDialogState()
	st.Name = "Ali Khan"
	data, err := st.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.Contains(data, `"visitor_name":"Ali Khan"`) {
		t.Errorf("visitor fields are not flattened: %s", data)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, nested := raw["VisitorInfo"]; nested {
		t.Error("visitor info serialized as a nested object")
	}
}
