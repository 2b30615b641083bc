package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// VendorHost is the host recorded for vendor visits, which have no host step.
const VendorHost = "Admin"

// stepSupplier handles the supplier selection, the one step whose successor
// depends on the answer: a concrete pick skips the free-text entry step.
func (e *Engine) stepSupplier(ctx context.Context, st *models.DialogState, input string, def FlowDefinition) (string, error) {
	if validate, ok := def.Validators[StepSupplier]; ok && !validate(input) {
		return MsgInvalidSupplier + "\n" + SupplierPrompt(), nil
	}
	supplier, _ := matchSupplier(input)
	if supplier == "Other" {
		return e.enter(ctx, st, def.NextStep(StepSupplier)), nil
	}
	st.Supplier = supplier
	return e.enter(ctx, st, def.NextStep(StepSupplierOther)), nil
}

// prepareVendorRecord fills the host and purpose the vendor flow never asks
// for: the visit is attributed to the reception admin.
func (e *Engine) prepareVendorRecord(st *models.DialogState) {
	st.HostConfirmed = VendorHost
	st.Purpose = fmt.Sprintf("Vendor visit - %s", st.Supplier)
}

// matchSupplier resolves a supplier selection given either its list number or
// its name, case-insensitively.
func matchSupplier(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(Suppliers) {
			return Suppliers[n-1], true
		}
		return "", false
	}
	for _, s := range Suppliers {
		if strings.EqualFold(input, s) {
			return s, true
		}
	}
	return "", false
}
