package flow

import (
	"fmt"
	"strings"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// Welcome is printed once at the start of a session, before the first turn.
const Welcome = "Welcome to DPL! How can I help you today?\n\n1. I am here as a guest\n2. I am a vendor\n3. I am here for a pre-scheduled meeting"

// Fixed cross-step messages.
const (
	MsgVisitorTypeInvalid = "Please select: 1 for Guest, 2 for Vendor, 3 for Pre-scheduled Meeting"
	MsgComplete           = "Your registration is complete."
	MsgNoHostMatch        = "No matches found. Please enter a different name."
	MsgSelectionReprompt  = "I found multiple potential matches. Please select one by number or 0 to enter a different name."
	MsgDirectoryDown      = "The employee directory is unavailable right now. Please try again."
	MsgSaveFailed         = "We could not save your registration. Please try again."
	MsgScheduledFallback  = "No scheduled meeting was found for you today.\n\n1. Continue as a guest\n2. Re-enter the host name"
)

// stepPrompts holds the deterministic single-line prompt for every step. These
// are the system of record: the generation layer may paraphrase them, but the
// engine always has this text available and falls back to it.
var stepPrompts = map[string]string{
	StepName:      "Please enter your name:",
	StepGroupSize: "Enter group size (1-10):",
	StepCNIC:      "Enter CNIC (Format: 12345-1234567-1):",
	StepPhone:     "Enter phone number (Format: 03001234567):",
	StepHost:      "Who are you visiting?",
	StepPurpose:   "What is the purpose of your visit?",

	StepSupplierOther:   "Please enter your supplier name:",
	StepVendorName:      "Please enter your full name:",
	StepVendorGroupSize: "Enter group size (1-10):",
	StepVendorCNIC:      "Enter CNIC (Format: 12345-1234567-1):",
	StepVendorPhone:     "Enter phone number (Format: 03001234567):",

	StepScheduledName:  "Please enter your name:",
	StepScheduledCNIC:  "Enter CNIC (Format: 12345-1234567-1):",
	StepScheduledPhone: "Please provide your contact number:",
	StepScheduledEmail: "Please enter your email address:",
	StepScheduledHost:  "Please enter the name of the person you're scheduled to meet with:",
}

// PromptFor returns the fixed prompt text for a main-line step. The supplier
// step carries its numbered list.
func PromptFor(step string) string {
	if step == StepSupplier {
		return SupplierPrompt()
	}
	return stepPrompts[step]
}

// SupplierPrompt renders the supplier selection prompt with the numbered list.
func SupplierPrompt() string {
	var b strings.Builder
	b.WriteString("Please select your supplier company:")
	for i, s := range Suppliers {
		fmt.Fprintf(&b, "\n%d. %s", i+1, s)
	}
	return b.String()
}

// memberPrompt renders the collection prompt for one group-member field. The
// vendor flow uses slightly different wording.
func memberPrompt(sub models.MemberSubstep, vendor bool) string {
	kind := "group member"
	if vendor {
		kind = "vendor group member"
	}
	switch sub.Field {
	case models.MemberFieldName:
		return fmt.Sprintf("Please enter the name of %s %d:", kind, sub.Index)
	case models.MemberFieldCNIC:
		return fmt.Sprintf("Please enter the CNIC number of %s %d (format: 12345-1234567-1):", kind, sub.Index)
	default:
		return fmt.Sprintf("Please enter the phone number of %s %d:", kind, sub.Index)
	}
}

// memberError renders the fixed validation message for one group-member field.
func memberError(sub models.MemberSubstep, vendor bool) string {
	kind := "group member"
	if vendor {
		kind = "vendor group member"
	}
	switch sub.Field {
	case models.MemberFieldName:
		return fmt.Sprintf("Please provide a valid name for %s %d (letters and spaces only).", kind, sub.Index)
	case models.MemberFieldCNIC:
		return fmt.Sprintf("Please provide a valid CNIC number for %s %d in the format: 12345-1234567-1.", kind, sub.Index)
	default:
		return fmt.Sprintf("Please provide a valid phone number for %s %d.", kind, sub.Index)
	}
}

// selectionList renders the numbered host disambiguation list, 1-based, with
// the 0 escape for re-entering a different name.
func selectionList(matches []models.EmployeeCandidate) string {
	var b strings.Builder
	if len(matches) == 1 {
		b.WriteString("I found a potential match. Please confirm by number:\n")
	} else {
		b.WriteString("I found multiple potential matches. Please select one by number:\n")
	}
	for i, m := range matches {
		dept := m.Department
		if dept == "" {
			dept = "Unknown Department"
		}
		fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, m.DisplayName, dept)
	}
	b.WriteString("  0. None of these / Enter a different name")
	return b.String()
}

// meetingFoundPrompt renders the scheduled-meeting confirmation prompt.
func meetingFoundPrompt(m *models.Meeting) string {
	return fmt.Sprintf("Found your scheduled meeting:\nTime: %s\nPurpose: %s\n\nType 'confirm' to proceed or 'back' to re-enter the host name.",
		m.Start.Format("03:04 PM"), m.Subject)
}

// summary renders the plain-text review block shown at the confirm step.
func summary(info *models.VisitorInfo) string {
	var b strings.Builder
	if info.VisitorType == models.VisitorTypeVendor {
		fmt.Fprintf(&b, "Supplier: %s\n", info.Supplier)
	}
	fmt.Fprintf(&b, "Name: %s\nCNIC: %s\nPhone: %s", info.Name, info.CNIC, info.Phone)
	if info.IsGroupVisit {
		fmt.Fprintf(&b, "\nGroup size: %d", info.TotalMembers)
		for i, m := range info.GroupMembers {
			fmt.Fprintf(&b, "\nMember %d: %s / %s / %s", i+2, m.Name, m.CNIC, m.Phone)
		}
	}
	if info.HostConfirmed != "" {
		fmt.Fprintf(&b, "\nHost: %s", info.HostConfirmed)
	}
	if info.Purpose != "" {
		fmt.Fprintf(&b, "\nPurpose: %s", info.Purpose)
	}
	return b.String()
}

// confirmPrompt renders the full confirm-step message: instruction line plus
// the collected-field summary.
func confirmPrompt(info *models.VisitorInfo) string {
	return "Please review your information and type 'confirm' to proceed or 'edit' to make changes.\n" + summary(info)
}
