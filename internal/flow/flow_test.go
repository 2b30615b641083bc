package flow

import (
	"strings"
	"testing"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

func TestNextStepWalksDeclaredSequence(t *testing.T) {
	if got := GuestFlow.NextStep(StepName); got != StepGroupSize {
		t.Errorf("NextStep(name) = %q, want group_size", got)
	}
	if got := GuestFlow.NextStep(StepConfirm); got != StepComplete {
		t.Errorf("NextStep(confirm) = %q, want complete", got)
	}
	if got := VendorFlow.NextStep(StepSupplierOther); got != StepVendorName {
		t.Errorf("NextStep(supplier_other) = %q, want vendor_name", got)
	}
	if got := ScheduledFlow.NextStep("bogus"); got != StepComplete {
		t.Errorf("NextStep of an unknown step = %q, want complete", got)
	}
}

func TestContains(t *testing.T) {
	if !GuestFlow.Contains(StepHost) {
		t.Error("guest flow should contain the host step")
	}
	if GuestFlow.Contains(StepSupplier) {
		t.Error("guest flow should not contain the supplier step")
	}
	if !VendorFlow.Contains(StepSupplierOther) {
		t.Error("vendor flow should contain the free-text supplier step")
	}
}

func TestDefinitionFor(t *testing.T) {
	for _, vt := range []models.VisitorType{models.VisitorTypeGuest, models.VisitorTypeVendor, models.VisitorTypePreScheduled} {
		def, ok := DefinitionFor(vt)
		if !ok {
			t.Fatalf("DefinitionFor(%q) not found", vt)
		}
		if def.Type != vt {
			t.Errorf("DefinitionFor(%q) returned type %q", vt, def.Type)
		}
	}
	if _, ok := DefinitionFor(models.VisitorType("alien")); ok {
		t.Error("DefinitionFor accepted an unknown visitor type")
	}
}

func TestMissingFields(t *testing.T) {
	var info models.VisitorInfo
	missing := GuestFlow.MissingFields(&info)
	if len(missing) != len(GuestFlow.RequiredFields) {
		t.Fatalf("empty session missing %d fields, want all %d", len(missing), len(GuestFlow.RequiredFields))
	}

	info.Name = "Ali Khan"
	info.CNIC = "12345-1234567-1"
	info.Phone = "03001234567"
	info.HostConfirmed = "Saad Khan"
	missing = GuestFlow.MissingFields(&info)
	if len(missing) != 1 || missing[0] != "purpose" {
		t.Errorf("missing = %v, want [purpose]", missing)
	}

	info.Purpose = "   "
	if got := GuestFlow.MissingFields(&info); len(got) != 1 {
		t.Errorf("whitespace-only purpose should still be missing, got %v", got)
	}
	info.Purpose = "Audit"
	if got := GuestFlow.MissingFields(&info); len(got) != 0 {
		t.Errorf("complete session reported missing fields: %v", got)
	}
}

// The engine must take its step order from the declared sequence, not from
// hard-coded transitions.
func TestEngineFollowsDeclaredSequence(t *testing.T) {
	orig := GuestFlow
	GuestFlow = FlowDefinition{
		Type:           models.VisitorTypeGuest,
		Steps:          []string{StepName, StepConfirm, StepComplete},
		Validators:     map[string]func(string) bool{StepName: ValidName},
		RequiredFields: orig.RequiredFields,
	}
	defer func() { GuestFlow = orig }()

	e, _ := newTestEngine(t)
	st := models.NewDialogState()
	reply := run(t, e, st, "1", "Ali Khan")

	if st.CurrentStep != StepConfirm {
		t.Errorf("shortened sequence should go name -> confirm, at %q", st.CurrentStep)
	}
	if !strings.Contains(reply, "confirm") {
		t.Errorf("reply = %q, want the review prompt", reply)
	}
}

// The engine must gate input with the validator declared for the step.
func TestEngineConsultsDeclaredValidators(t *testing.T) {
	orig := GuestFlow
	GuestFlow.Validators = map[string]func(string) bool{
		StepName: func(string) bool { return false },
	}
	defer func() { GuestFlow = orig }()

	e, _ := newTestEngine(t)
	st := models.NewDialogState()
	reply := run(t, e, st, "1", "Ali Khan")

	if reply != MsgInvalidName {
		t.Errorf("reply = %q, want %q from the declared validator", reply, MsgInvalidName)
	}
	if st.CurrentStep != StepName {
		t.Errorf("step advanced past a rejecting validator: %q", st.CurrentStep)
	}
	if st.Name != "" {
		t.Errorf("rejected input was stored: %q", st.Name)
	}
}

func TestKnownStepCoversAllFlows(t *testing.T) {
	for _, d := range []FlowDefinition{GuestFlow, VendorFlow, ScheduledFlow} {
		for _, s := range d.Steps {
			if !KnownStep(s) {
				t.Errorf("KnownStep(%q) = false for a declared step", s)
			}
		}
	}
	if KnownStep("member_3_cnic") {
		t.Error("KnownStep accepted a legacy composite step name")
	}
}

func TestPromptForSupplierCarriesList(t *testing.T) {
	p := PromptFor(StepSupplier)
	if p != SupplierPrompt() {
		t.Errorf("PromptFor(supplier) = %q, want the numbered list prompt", p)
	}
	if !strings.Contains(p, "1. Maclife") || !strings.Contains(p, "Other") {
		t.Errorf("supplier prompt should enumerate suppliers: %q", p)
	}
}
