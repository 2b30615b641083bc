package flow

import (
	"strings"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// Step identifiers. These are data, not behavior: each flow is an ordered
// sequence of steps, and the engine is generic over the sequence except for
// the declared branch points (group sub-loop, host selection, scheduled
// meeting confirmation).
const (
	// Cross-cutting pseudo-steps shared by every flow.
	StepVisitorType = "visitor_type"
	StepComplete    = "complete"

	// Guest flow.
	StepName      = "name"
	StepGroupSize = "group_size"
	StepCNIC      = "cnic"
	StepPhone     = "phone"
	StepHost      = "host"
	StepPurpose   = "purpose"
	StepConfirm   = "confirm"

	// Vendor flow.
	StepSupplier        = "supplier"
	StepSupplierOther   = "supplier_other"
	StepVendorName      = "vendor_name"
	StepVendorGroupSize = "vendor_group_size"
	StepVendorCNIC      = "vendor_cnic"
	StepVendorPhone     = "vendor_phone"
	StepVendorConfirm   = "vendor_confirm"

	// Pre-scheduled flow.
	StepScheduledName     = "scheduled_name"
	StepScheduledCNIC     = "scheduled_cnic"
	StepScheduledPhone    = "scheduled_phone"
	StepScheduledEmail    = "scheduled_email"
	StepScheduledHost     = "scheduled_host"
	StepScheduledConfirm  = "scheduled_confirm"
	StepScheduledFallback = "scheduled_fallback"

	// Markers for the group-member sub-loop. The member index and field live
	// in the typed DialogState.Member sub-state, not in the step name.
	StepMember       = "member"
	StepVendorMember = "vendor_member"
)

// Suppliers is the fixed supplier enumeration shown to vendors. "Other" is the
// escape value that diverts to free-text supplier entry.
var Suppliers = []string{
	"Maclife",
	"Micrographics",
	"Amston",
	"Prime Computers",
	"Futureges",
	"Other",
}

// FlowDefinition declares one visitor journey: the ordered main-line step
// sequence, the validator bound to each step, and the fields that must be
// populated before the terminal step is reachable.
type FlowDefinition struct {
	Type           models.VisitorType
	Steps          []string
	Validators     map[string]func(string) bool
	RequiredFields []string
}

// GuestFlow is the walk-in guest journey.
var GuestFlow = FlowDefinition{
	Type:  models.VisitorTypeGuest,
	Steps: []string{StepName, StepGroupSize, StepCNIC, StepPhone, StepHost, StepPurpose, StepConfirm, StepComplete},
	Validators: map[string]func(string) bool{
		StepName:      ValidName,
		StepGroupSize: ValidGroupSize,
		StepCNIC:      ValidCNIC,
		StepPhone:     ValidPhone,
		StepPurpose:   ValidRequired,
	},
	RequiredFields: []string{"visitor_name", "visitor_cnic", "visitor_phone", "host_confirmed", "purpose"},
}

// VendorFlow is the supplier-representative journey. It has no host step; the
// record is attributed to the reception admin.
var VendorFlow = FlowDefinition{
	Type: models.VisitorTypeVendor,
	Steps: []string{StepSupplier, StepSupplierOther, StepVendorName, StepVendorGroupSize,
		StepVendorCNIC, StepVendorPhone, StepVendorConfirm, StepComplete},
	Validators: map[string]func(string) bool{
		StepSupplier:        ValidSupplier,
		StepSupplierOther:   ValidRequired,
		StepVendorName:      ValidName,
		StepVendorGroupSize: ValidGroupSize,
		StepVendorCNIC:      ValidCNIC,
		StepVendorPhone:     ValidPhone,
	},
	RequiredFields: []string{"supplier", "visitor_name", "visitor_cnic", "visitor_phone"},
}

// ScheduledFlow is the pre-scheduled meeting journey.
var ScheduledFlow = FlowDefinition{
	Type: models.VisitorTypePreScheduled,
	Steps: []string{StepScheduledName, StepScheduledCNIC, StepScheduledPhone, StepScheduledEmail,
		StepScheduledHost, StepScheduledConfirm, StepComplete},
	Validators: map[string]func(string) bool{
		StepScheduledName:  ValidName,
		StepScheduledCNIC:  ValidCNIC,
		StepScheduledPhone: ValidPhone,
		StepScheduledEmail: ValidEmail,
	},
	RequiredFields: []string{"visitor_name", "visitor_cnic", "visitor_phone", "visitor_email", "host_confirmed"},
}

// DefinitionFor returns the flow definition governing the given visitor type.
func DefinitionFor(vt models.VisitorType) (FlowDefinition, bool) {
	switch vt {
	case models.VisitorTypeGuest:
		return GuestFlow, true
	case models.VisitorTypeVendor:
		return VendorFlow, true
	case models.VisitorTypePreScheduled:
		return ScheduledFlow, true
	default:
		return FlowDefinition{}, false
	}
}

// NextStep returns the step following current in the main-line sequence, or
// StepComplete when current is the last step or unknown.
func (d FlowDefinition) NextStep(current string) string {
	for i, s := range d.Steps {
		if s == current && i+1 < len(d.Steps) {
			return d.Steps[i+1]
		}
	}
	return StepComplete
}

// Contains reports whether step belongs to this flow's main-line sequence.
func (d FlowDefinition) Contains(step string) bool {
	for _, s := range d.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// MissingFields lists the declared required fields the session has not yet
// populated. The engine refuses to finalize a record while any remain.
func (d FlowDefinition) MissingFields(info *models.VisitorInfo) []string {
	var missing []string
	for _, f := range d.RequiredFields {
		if strings.TrimSpace(requiredFieldValue(info, f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// requiredFieldValue reads the session field named by a RequiredFields entry.
func requiredFieldValue(info *models.VisitorInfo, field string) string {
	switch field {
	case "visitor_name":
		return info.Name
	case "visitor_cnic":
		return info.CNIC
	case "visitor_phone":
		return info.Phone
	case "visitor_email":
		return info.Email
	case "host_confirmed":
		return info.HostConfirmed
	case "purpose":
		return info.Purpose
	case "supplier":
		return info.Supplier
	default:
		return ""
	}
}

// knownSteps is the set of every step identifier the engine understands,
// including pseudo-steps and sub-loop markers. Incoming state naming anything
// else is treated as a fresh session.
var knownSteps = func() map[string]struct{} {
	set := map[string]struct{}{
		StepVisitorType:       {},
		StepComplete:          {},
		StepMember:            {},
		StepVendorMember:      {},
		StepScheduledFallback: {},
	}
	for _, d := range []FlowDefinition{GuestFlow, VendorFlow, ScheduledFlow} {
		for _, s := range d.Steps {
			set[s] = struct{}{}
		}
	}
	return set
}()

// KnownStep reports whether step is a state the engine can resume from.
func KnownStep(step string) bool {
	_, ok := knownSteps[step]
	return ok
}
