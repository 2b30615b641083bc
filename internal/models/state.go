package models

import "encoding/json"

// MemberField names the field being collected for a group member.
type MemberField string

const (
	MemberFieldName  MemberField = "name"
	MemberFieldCNIC  MemberField = "cnic"
	MemberFieldPhone MemberField = "phone"
)

// MemberSubstep is the tagged sub-state used while walking the group-member
// collection loop. Index is the 1-based member number, so it starts at 2 (the
// primary visitor is member 1 and is stored on VisitorInfo directly).
type MemberSubstep struct {
	Index int         `json:"index"`
	Field MemberField `json:"field"`
}

// VisitorInfo is the mutable accumulator for one visitor session. Fields are
// filled in one step at a time by the dialog engine and copied into a Visitor
// record at completion.
type VisitorInfo struct {
	VisitorType      VisitorType   `json:"visitor_type,omitempty"`
	Name             string        `json:"visitor_name,omitempty"`
	CNIC             string        `json:"visitor_cnic,omitempty"`
	Phone            string        `json:"visitor_phone,omitempty"`
	Email            string        `json:"visitor_email,omitempty"`
	HostRequested    string        `json:"host_requested,omitempty"`
	HostConfirmed    string        `json:"host_confirmed,omitempty"`
	HostEmail        string        `json:"host_email,omitempty"`
	Purpose          string        `json:"purpose,omitempty"`
	Supplier         string        `json:"supplier,omitempty"`
	GroupID          string        `json:"group_id,omitempty"`
	IsGroupVisit     bool          `json:"is_group_visit,omitempty"`
	TotalMembers     int           `json:"total_members,omitempty"`
	GroupMembers     []GroupMember `json:"group_members,omitempty"`
	ScheduledMeeting *Meeting      `json:"scheduled_meeting,omitempty"`
}

// DialogState is the complete state of one dialog session. It travels over the
// wire with every turn (stateless deployment) or lives in the session store
// keyed by session ID.
type DialogState struct {
	CurrentStep string `json:"current_step,omitempty"`
	VisitorInfo
	EmployeeSelectionMode bool                `json:"employee_selection_mode,omitempty"`
	EmployeeMatches       []EmployeeCandidate `json:"employee_matches,omitempty"`
	Member                *MemberSubstep      `json:"member_substep,omitempty"`
}

// NewDialogState returns a fresh session positioned at the visitor type prompt.
func NewDialogState() *DialogState {
	return &DialogState{CurrentStep: "visitor_type"}
}

// ToJSON serializes the dialog state for the session store.
func (s *DialogState) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON restores a dialog state previously produced by ToJSON.
func (s *DialogState) FromJSON(data string) error {
	return json.Unmarshal([]byte(data), s)
}
