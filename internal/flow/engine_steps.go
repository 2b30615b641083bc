package flow

import (
	"context"
	"strings"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// stepErrors maps each validated step to its fixed rejection message. The
// supplier step is absent because its rejection carries the numbered list.
var stepErrors = map[string]string{
	StepName:          MsgInvalidName,
	StepVendorName:    MsgInvalidName,
	StepScheduledName: MsgInvalidName,

	StepGroupSize:       MsgInvalidGroupSize,
	StepVendorGroupSize: MsgInvalidGroupSize,

	StepCNIC:          MsgInvalidCNIC,
	StepVendorCNIC:    MsgInvalidCNIC,
	StepScheduledCNIC: MsgInvalidCNIC,

	StepPhone:          MsgInvalidPhone,
	StepVendorPhone:    MsgInvalidPhone,
	StepScheduledPhone: MsgInvalidPhone,

	StepScheduledEmail: MsgInvalidEmail,

	StepSupplierOther: MsgEmptyField,
	StepPurpose:       MsgEmptyField,
}

// fieldSetters binds each collecting step to the session field it fills.
// Branch-point steps (supplier, host, confirm) have no entry; their handlers
// record state themselves.
var fieldSetters = map[string]func(*Engine, *models.DialogState, string){
	StepName:          func(_ *Engine, st *models.DialogState, in string) { st.Name = strings.TrimSpace(in) },
	StepVendorName:    func(_ *Engine, st *models.DialogState, in string) { st.Name = strings.TrimSpace(in) },
	StepScheduledName: func(_ *Engine, st *models.DialogState, in string) { st.Name = strings.TrimSpace(in) },

	StepGroupSize:       func(e *Engine, st *models.DialogState, in string) { e.applyGroupSize(st, in) },
	StepVendorGroupSize: func(e *Engine, st *models.DialogState, in string) { e.applyGroupSize(st, in) },

	StepCNIC:          func(_ *Engine, st *models.DialogState, in string) { st.CNIC = strings.TrimSpace(in) },
	StepVendorCNIC:    func(_ *Engine, st *models.DialogState, in string) { st.CNIC = strings.TrimSpace(in) },
	StepScheduledCNIC: func(_ *Engine, st *models.DialogState, in string) { st.CNIC = strings.TrimSpace(in) },

	StepPhone:          func(_ *Engine, st *models.DialogState, in string) { st.Phone = strings.TrimSpace(in) },
	StepVendorPhone:    func(_ *Engine, st *models.DialogState, in string) { st.Phone = strings.TrimSpace(in) },
	StepScheduledPhone: func(_ *Engine, st *models.DialogState, in string) { st.Phone = strings.TrimSpace(in) },

	StepScheduledEmail: func(_ *Engine, st *models.DialogState, in string) { st.Email = strings.TrimSpace(in) },
	StepSupplierOther:  func(_ *Engine, st *models.DialogState, in string) { st.Supplier = strings.TrimSpace(in) },
	StepPurpose:        func(_ *Engine, st *models.DialogState, in string) { st.Purpose = strings.TrimSpace(in) },
}

// stepFlow advances one main-line turn off the flow definition: the declared
// validator gates the input, the field setter records it, and the declared
// sequence supplies the next step. Branch points the sequence table cannot
// express (the supplier escape, host disambiguation, confirm keywords) keep
// dedicated handlers.
func (e *Engine) stepFlow(ctx context.Context, st *models.DialogState, input string, def FlowDefinition) (string, error) {
	step := st.CurrentStep
	if !def.Contains(step) {
		// Step belongs to a different flow: the state is inconsistent, start
		// over.
		*st = *models.NewDialogState()
		return MsgVisitorTypeInvalid, nil
	}

	switch step {
	case StepSupplier:
		return e.stepSupplier(ctx, st, input, def)
	case StepHost, StepScheduledHost:
		return e.stepHost(ctx, st, input, def)
	case StepConfirm, StepVendorConfirm:
		return e.stepConfirm(ctx, st, input, def)
	case StepScheduledConfirm:
		return e.stepScheduledConfirm(ctx, st, input)
	}

	if validate, ok := def.Validators[step]; ok && !validate(input) {
		return stepErrors[step], nil
	}
	if set, ok := fieldSetters[step]; ok {
		set(e, st, input)
	}

	// The group-member sub-loop interposes between the phone step and the rest
	// of the main line when a group was declared.
	switch step {
	case StepPhone:
		if reply, ok := e.beginMemberLoop(st, false); ok {
			return reply, nil
		}
	case StepVendorPhone:
		if reply, ok := e.beginMemberLoop(st, true); ok {
			return reply, nil
		}
	}
	return e.enter(ctx, st, def.NextStep(step)), nil
}

// enter moves the session into next and renders its opening reply. The
// confirm steps show the collected-field summary instead of a prompt; the
// vendor confirm also stamps the admin attribution first.
func (e *Engine) enter(ctx context.Context, st *models.DialogState, next string) string {
	st.CurrentStep = next
	switch next {
	case StepConfirm:
		return confirmPrompt(&st.VisitorInfo)
	case StepVendorConfirm:
		e.prepareVendorRecord(st)
		return confirmPrompt(&st.VisitorInfo)
	default:
		return e.prompt(ctx, st, next)
	}
}

// stepHost handles the host step for the guest and pre-scheduled flows: name
// entry resolves against the directory, and while selection mode is active
// every input is a pick.
func (e *Engine) stepHost(ctx context.Context, st *models.DialogState, input string, def FlowDefinition) (string, error) {
	if !st.EmployeeSelectionMode {
		return e.resolveHost(ctx, st, input), nil
	}
	picked, reply := e.handleHostSelection(ctx, st, input, st.CurrentStep)
	if !picked {
		return reply, nil
	}
	if st.CurrentStep == StepScheduledHost {
		// The pre-scheduled flow checks the host's calendar before confirming.
		return e.lookupMeeting(ctx, st), nil
	}
	return e.enter(ctx, st, def.NextStep(st.CurrentStep)), nil
}

// stepConfirm handles the guest and vendor review step. Edit rewinds to the
// flow's first step, keeping only the visitor type.
func (e *Engine) stepConfirm(ctx context.Context, st *models.DialogState, input string, def FlowDefinition) (string, error) {
	switch strings.ToLower(input) {
	case "confirm":
		return e.complete(ctx, st)
	case "edit":
		resetInfo(st)
		return e.enter(ctx, st, def.Steps[0]), nil
	default:
		return confirmPrompt(&st.VisitorInfo), nil
	}
}
