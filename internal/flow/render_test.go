package flow

import (
	"context"
	"fmt"
	"testing"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// scriptedGenAI returns a fixed completion or error for renderer tests.
type scriptedGenAI struct {
	out string
	err error
}

func (s *scriptedGenAI) GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.out, s.err
}

func TestRendererParaphraseUsed(t *testing.T) {
	e, _ := newTestEngine(t, WithRenderer(NewGenAIRenderer(&scriptedGenAI{out: "What's your name, please?"})))
	st := models.NewDialogState()
	reply := run(t, e, st, "1")
	if reply != "What's your name, please?" {
		t.Errorf("reply = %q, want the paraphrase", reply)
	}
	if st.CurrentStep != StepName {
		t.Errorf("step = %q, want name", st.CurrentStep)
	}
}

func TestRendererErrorFallsBack(t *testing.T) {
	e, _ := newTestEngine(t, WithRenderer(NewGenAIRenderer(&scriptedGenAI{err: fmt.Errorf("rate limited")})))
	st := models.NewDialogState()
	reply := run(t, e, st, "1")
	if reply != PromptFor(StepName) {
		t.Errorf("reply = %q, want deterministic fallback", reply)
	}
}

func TestRendererEmptyOutputFallsBack(t *testing.T) {
	e, _ := newTestEngine(t, WithRenderer(NewGenAIRenderer(&scriptedGenAI{out: "   "})))
	st := models.NewDialogState()
	reply := run(t, e, st, "1")
	if reply != PromptFor(StepName) {
		t.Errorf("reply = %q, want deterministic fallback", reply)
	}
}

func TestRendererMultilineOutputFallsBack(t *testing.T) {
	e, _ := newTestEngine(t, WithRenderer(NewGenAIRenderer(&scriptedGenAI{out: "line one\nline two"})))
	st := models.NewDialogState()
	reply := run(t, e, st, "1")
	if reply != PromptFor(StepName) {
		t.Errorf("reply = %q, want deterministic fallback", reply)
	}
}

func TestRendererNeverTouchesValidationMessages(t *testing.T) {
	e, _ := newTestEngine(t, WithRenderer(NewGenAIRenderer(&scriptedGenAI{out: "Rephrased!"})))
	st := models.NewDialogState()
	run(t, e, st, "1")
	reply := run(t, e, st, "x1") // invalid name
	if reply != MsgInvalidName {
		t.Errorf("validation message was rendered: %q", reply)
	}
}
