package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bilal1975873/DPL-RECEP-back/internal/genai"
	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// RenderContext carries the per-turn facts the generation layer may use to
// personalize a prompt. All fields are optional.
type RenderContext struct {
	Step        string
	VisitorType models.VisitorType
	VisitorName string
	Supplier    string
	MemberIndex int
}

// Renderer produces the response text for a step. Implementations may
// paraphrase the deterministic prompt but must never change its meaning: the
// engine rejects anything empty or spanning multiple lines and uses the fixed
// fallback instead.
type Renderer interface {
	Render(ctx context.Context, fallback string, rc RenderContext) (string, error)
}

const renderSystemPrompt = `You are a corporate receptionist bot. Rephrase the given prompt as a single friendly line.
Rules: keep every format example and numbered option exactly as written, never add new questions,
never mention steps you were not given, reply with exactly one line of text and nothing else.`

// GenAIRenderer paraphrases step prompts through the GenAI client.
type GenAIRenderer struct {
	client genai.ClientInterface
}

// NewGenAIRenderer creates a renderer backed by the given GenAI client.
func NewGenAIRenderer(client genai.ClientInterface) *GenAIRenderer {
	return &GenAIRenderer{client: client}
}

// Render asks the model for a one-line paraphrase of the fallback prompt.
func (r *GenAIRenderer) Render(ctx context.Context, fallback string, rc RenderContext) (string, error) {
	user := fmt.Sprintf("Step: %s\nVisitor name: %s\nPrompt to rephrase: %s", rc.Step, rc.VisitorName, fallback)
	out, err := r.client.GeneratePromptWithContext(ctx, renderSystemPrompt, user)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty generation")
	}
	return out, nil
}

// renderOrFallback runs the configured renderer and returns the deterministic
// fallback whenever the renderer is absent, fails, or produces text that is
// unusable as a single-line step prompt. The fallback is the system of record;
// generated text is cosmetic only.
func (e *Engine) renderOrFallback(ctx context.Context, fallback string, rc RenderContext) string {
	if e.renderer == nil || fallback == "" {
		return fallback
	}
	out, err := e.renderer.Render(ctx, fallback, rc)
	if err != nil {
		slog.Debug("Renderer failed, using fallback", "step", rc.Step, "error", err)
		return fallback
	}
	if out == "" || strings.Contains(out, "\n") {
		slog.Debug("Renderer output unusable, using fallback", "step", rc.Step)
		return fallback
	}
	return out
}
