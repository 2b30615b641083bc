package flow

import (
	"context"
	"testing"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	"github.com/bilal1975873/DPL-RECEP-back/internal/store"
)

func TestStoreSessionStoreRoundTrip(t *testing.T) {
	ss := NewStoreSessionStore(store.NewInMemoryStore())
	ctx := context.Background()

	st := models.NewDialogState()
	st.CurrentStep = StepPhone
	st.VisitorType = models.VisitorTypeGuest
	st.Name = "Ali Khan"
	st.TotalMembers = 3
	st.Member = &models.MemberSubstep{Index: 2, Field: "cnic"}

	if err := ss.Save(ctx, "desk-1", st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := ss.Load(ctx, "desk-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil for a saved session")
	}
	if got.CurrentStep != StepPhone || got.Name != "Ali Khan" || got.TotalMembers != 3 {
		t.Errorf("loaded state = %+v, want saved fields back", got)
	}
	if got.Member == nil || got.Member.Index != 2 || got.Member.Field != "cnic" {
		t.Errorf("member sub-step not round-tripped: %+v", got.Member)
	}
}

func TestStoreSessionStoreMissingKey(t *testing.T) {
	ss := NewStoreSessionStore(store.NewInMemoryStore())
	got, err := ss.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Errorf("Load = %+v, want nil for an unknown key", got)
	}
}

func TestStoreSessionStoreDelete(t *testing.T) {
	ss := NewStoreSessionStore(store.NewInMemoryStore())
	ctx := context.Background()
	if err := ss.Save(ctx, "desk-1", models.NewDialogState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := ss.Delete(ctx, "desk-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err := ss.Load(ctx, "desk-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Errorf("session survived delete: %+v", got)
	}
}

func TestInMemorySessionStore(t *testing.T) {
	ss := NewInMemorySessionStore()
	ctx := context.Background()

	got, err := ss.Load(ctx, "cli")
	if err != nil || got != nil {
		t.Fatalf("Load on empty store = %+v, %v; want nil, nil", got, err)
	}

	st := models.NewDialogState()
	st.CurrentStep = StepConfirm
	if err := ss.Save(ctx, "cli", st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err = ss.Load(ctx, "cli")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil || got.CurrentStep != StepConfirm {
		t.Errorf("loaded state = %+v, want step confirm", got)
	}

	if err := ss.Delete(ctx, "cli"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, _ = ss.Load(ctx, "cli")
	if got != nil {
		t.Errorf("session survived delete: %+v", got)
	}
}
