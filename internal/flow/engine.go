package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bilal1975873/DPL-RECEP-back/internal/directory"
	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	"github.com/bilal1975873/DPL-RECEP-back/internal/notify"
	"github.com/bilal1975873/DPL-RECEP-back/internal/store"
)

// Opts holds configuration options for the dialog engine.
type Opts struct {
	Store             store.Store
	Directory         directory.Directory
	Calendar          directory.Calendar
	Scheduler         directory.Scheduler
	Notifier          notify.Notifier
	Renderer          Renderer
	ResolverThreshold int
	Clock             func() time.Time
}

// Option defines a configuration option for the dialog engine.
type Option func(*Opts)

func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

func WithDirectory(d directory.Directory) Option {
	return func(o *Opts) { o.Directory = d }
}

func WithCalendar(c directory.Calendar) Option {
	return func(o *Opts) { o.Calendar = c }
}

func WithScheduler(s directory.Scheduler) Option {
	return func(o *Opts) { o.Scheduler = s }
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *Opts) { o.Notifier = n }
}

func WithRenderer(r Renderer) Option {
	return func(o *Opts) { o.Renderer = r }
}

// WithResolverThreshold sets the fuzzy score threshold for host resolution.
func WithResolverThreshold(t int) Option {
	return func(o *Opts) { o.ResolverThreshold = t }
}

// WithClock overrides the engine's time source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// Engine advances a dialog session one turn at a time. It owns all step
// transitions and fires the persistence and notification side effects exactly
// once, at the transition into the complete step.
type Engine struct {
	store     store.Store
	directory directory.Directory
	calendar  directory.Calendar
	scheduler directory.Scheduler
	notifier  notify.Notifier
	renderer  Renderer
	resolver  *Resolver
	now       func() time.Time
}

// NewEngine creates a dialog engine. A store is required; directory, calendar,
// notifier and renderer are optional and degrade gracefully when absent.
func NewEngine(opts ...Option) (*Engine, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store must be provided")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	slog.Debug("NewEngine invoked",
		"directory_set", cfg.Directory != nil,
		"calendar_set", cfg.Calendar != nil,
		"scheduler_set", cfg.Scheduler != nil,
		"notifier_set", cfg.Notifier != nil,
		"renderer_set", cfg.Renderer != nil,
		"threshold", cfg.ResolverThreshold)

	return &Engine{
		store:     cfg.Store,
		directory: cfg.Directory,
		calendar:  cfg.Calendar,
		scheduler: cfg.Scheduler,
		notifier:  cfg.Notifier,
		renderer:  cfg.Renderer,
		resolver:  NewResolver(cfg.ResolverThreshold),
		now:       cfg.Clock,
	}, nil
}

// Step consumes one visitor input, mutates the state in place, and returns the
// reply text. A non-nil error means the turn could not be completed and the
// state was left unchanged; every validation failure or re-prompt is a normal
// reply, not an error.
func (e *Engine) Step(ctx context.Context, st *models.DialogState, input string) (string, error) {
	if st.CurrentStep == "" || !KnownStep(st.CurrentStep) {
		slog.Debug("Unknown step in incoming state, starting fresh session", "step", st.CurrentStep)
		*st = *models.NewDialogState()
	}
	input = strings.TrimSpace(input)

	switch st.CurrentStep {
	case StepVisitorType:
		return e.stepVisitorType(ctx, st, input), nil
	case StepComplete:
		// Terminal and re-entrant: no side effects on repeat turns.
		return MsgComplete, nil
	case StepMember, StepVendorMember:
		return e.stepMember(ctx, st, input), nil
	case StepScheduledFallback:
		return e.stepScheduledFallback(ctx, st, input), nil
	}

	def, ok := DefinitionFor(st.VisitorType)
	if !ok {
		// Step belongs to a flow but no type was selected: the state is
		// inconsistent, start over.
		slog.Debug("Step without visitor type, starting fresh session", "step", st.CurrentStep)
		*st = *models.NewDialogState()
		return MsgVisitorTypeInvalid, nil
	}
	return e.stepFlow(ctx, st, input, def)
}

// stepVisitorType handles the initial flow selection and enters the chosen
// flow at its declared first step.
func (e *Engine) stepVisitorType(ctx context.Context, st *models.DialogState, input string) string {
	switch strings.ToLower(input) {
	case "1", "guest":
		st.VisitorType = models.VisitorTypeGuest
	case "2", "vendor":
		st.VisitorType = models.VisitorTypeVendor
	case "3", "prescheduled", "pre-scheduled", "scheduled":
		st.VisitorType = models.VisitorTypePreScheduled
	default:
		return MsgVisitorTypeInvalid
	}
	def, _ := DefinitionFor(st.VisitorType)
	return e.enter(ctx, st, def.Steps[0])
}

// stepMember walks the group-member collection sub-loop for both the guest and
// vendor flows. Fields are collected name, CNIC, phone per member, for members
// 2 through TotalMembers.
func (e *Engine) stepMember(ctx context.Context, st *models.DialogState, input string) string {
	vendor := st.CurrentStep == StepVendorMember
	if st.Member == nil {
		st.Member = &models.MemberSubstep{Index: len(st.GroupMembers) + 2, Field: models.MemberFieldName}
	}
	sub := st.Member

	switch sub.Field {
	case models.MemberFieldName:
		if !ValidName(input) {
			return memberError(*sub, vendor)
		}
		st.GroupMembers = append(st.GroupMembers, models.GroupMember{Name: strings.TrimSpace(input)})
		sub.Field = models.MemberFieldCNIC
	case models.MemberFieldCNIC:
		if !ValidCNIC(input) {
			return memberError(*sub, vendor)
		}
		st.GroupMembers[len(st.GroupMembers)-1].CNIC = strings.TrimSpace(input)
		sub.Field = models.MemberFieldPhone
	case models.MemberFieldPhone:
		if !ValidPhone(input) {
			return memberError(*sub, vendor)
		}
		st.GroupMembers[len(st.GroupMembers)-1].Phone = strings.TrimSpace(input)
		if sub.Index < st.TotalMembers {
			st.Member = &models.MemberSubstep{Index: sub.Index + 1, Field: models.MemberFieldName}
			return memberPrompt(*st.Member, vendor)
		}
		// All members collected: rejoin the declared sequence after the
		// phone step.
		st.Member = nil
		def, _ := DefinitionFor(st.VisitorType)
		phoneStep := StepPhone
		if vendor {
			phoneStep = StepVendorPhone
		}
		return e.enter(ctx, st, def.NextStep(phoneStep))
	}
	return memberPrompt(*sub, vendor)
}

// applyGroupSize records the parsed group size and mints the group ID for
// multi-member visits.
func (e *Engine) applyGroupSize(st *models.DialogState, input string) {
	n, _ := strconv.Atoi(strings.TrimSpace(input))
	st.TotalMembers = n
	if n > 1 {
		st.IsGroupVisit = true
		st.GroupID = uuid.NewString()
	}
}

// beginMemberLoop enters the group-member sub-loop when more members remain,
// and reports whether it did.
func (e *Engine) beginMemberLoop(st *models.DialogState, vendor bool) (string, bool) {
	if !st.IsGroupVisit || len(st.GroupMembers) >= st.TotalMembers-1 {
		return "", false
	}
	st.Member = &models.MemberSubstep{Index: len(st.GroupMembers) + 2, Field: models.MemberFieldName}
	if vendor {
		st.CurrentStep = StepVendorMember
	} else {
		st.CurrentStep = StepMember
	}
	return memberPrompt(*st.Member, vendor), true
}

// resolveHost runs directory search plus fuzzy resolution for a host name and
// switches the state into selection mode. Every resolution outcome, including
// a single candidate, requires an explicit pick.
func (e *Engine) resolveHost(ctx context.Context, st *models.DialogState, input string) string {
	if input == "" {
		return MsgEmptyField
	}
	if e.directory == nil {
		slog.Error("Host resolution requested without a directory")
		return MsgDirectoryDown
	}
	st.HostRequested = input

	roster, err := e.directory.Search(ctx, input)
	if err != nil {
		slog.Error("Directory search failed", "error", err)
		return MsgDirectoryDown
	}

	result := e.resolver.Resolve(input, roster)
	if result.None() {
		return MsgNoHostMatch
	}
	st.EmployeeSelectionMode = true
	st.EmployeeMatches = result.Candidates()
	return selectionList(st.EmployeeMatches)
}

// handleHostSelection consumes one input while selection mode is active.
// It reports whether a candidate was picked; when it was not, the returned
// reply re-prompts (or restarts host entry on the 0 escape).
func (e *Engine) handleHostSelection(ctx context.Context, st *models.DialogState, input, hostStep string) (bool, string) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 0 || n > len(st.EmployeeMatches) {
		return false, MsgSelectionReprompt + "\n" + selectionList(st.EmployeeMatches)
	}
	if n == 0 {
		st.EmployeeSelectionMode = false
		st.EmployeeMatches = nil
		st.HostRequested = ""
		return false, e.prompt(ctx, st, hostStep)
	}
	picked := st.EmployeeMatches[n-1]
	st.HostConfirmed = picked.DisplayName
	st.HostEmail = picked.Email
	st.EmployeeSelectionMode = false
	st.EmployeeMatches = nil
	slog.Debug("Host selected", "host", picked.DisplayName)
	return true, ""
}

// prompt renders the deterministic prompt for a main-line step, optionally
// paraphrased by the renderer.
func (e *Engine) prompt(ctx context.Context, st *models.DialogState, step string) string {
	fallback := PromptFor(step)
	rc := RenderContext{
		Step:        step,
		VisitorType: st.VisitorType,
		VisitorName: st.Name,
		Supplier:    st.Supplier,
	}
	if st.Member != nil {
		rc.MemberIndex = st.Member.Index
	}
	return e.renderOrFallback(ctx, fallback, rc)
}

// resetInfo rewinds a session for the edit loop, keeping only the visitor
// type.
func resetInfo(st *models.DialogState) {
	st.VisitorInfo = models.VisitorInfo{VisitorType: st.VisitorType}
	st.EmployeeSelectionMode = false
	st.EmployeeMatches = nil
	st.Member = nil
}

// complete persists the finished visit record, places a calendar hold on the
// host's calendar for walk-ins, and fires the host notification. Persistence
// failure fails the turn and leaves the state unchanged; calendar and
// notification failures are logged and swallowed once the record is durably
// stored.
func (e *Engine) complete(ctx context.Context, st *models.DialogState) (string, error) {
	if def, ok := DefinitionFor(st.VisitorType); ok {
		if missing := def.MissingFields(&st.VisitorInfo); len(missing) > 0 {
			slog.Error("Confirm reached with required fields missing", "missing", missing, "type", st.VisitorType)
			return "", fmt.Errorf("incomplete visit record: missing %s", strings.Join(missing, ", "))
		}
	}
	visitor := e.buildVisitor(st)
	if err := visitor.Validate(); err != nil {
		slog.Error("Completed session produced an invalid record", "error", err, "cnic", visitor.CNIC)
		return "", fmt.Errorf("invalid visit record: %w", err)
	}
	if err := e.store.AddVisit(visitor); err != nil {
		slog.Error("Visit persistence failed", "error", err, "cnic", visitor.CNIC)
		return "", fmt.Errorf("failed to save visit: %w", err)
	}
	st.CurrentStep = StepComplete

	if e.scheduler != nil && st.HostEmail != "" && st.ScheduledMeeting == nil {
		// Walk-ins get a short hold on the host's calendar, starting at the
		// next five-minute mark. Pre-scheduled visits already have theirs.
		start := e.now().UTC().Add(5 * time.Minute).Truncate(5 * time.Minute)
		if err := e.scheduler.CreateEvent(ctx, st.HostEmail, visitor.FullName, visitor.Purpose, start); err != nil {
			slog.Error("Calendar event creation failed", "error", err, "host", st.HostEmail)
		}
	}
	if e.notifier != nil && st.HostEmail != "" {
		host := models.EmployeeCandidate{DisplayName: st.HostConfirmed, Email: st.HostEmail}
		text := fmt.Sprintf("%s has arrived at reception to meet you. Purpose: %s", visitor.FullName, visitor.Purpose)
		if err := e.notifier.Notify(ctx, host, text); err != nil {
			slog.Error("Host notification failed", "error", err, "host", st.HostEmail)
		}
	}
	slog.Debug("Session completed", "type", visitor.Type, "cnic", visitor.CNIC)
	return MsgComplete, nil
}

// buildVisitor copies the session accumulator into a persistable record.
func (e *Engine) buildVisitor(st *models.DialogState) models.Visitor {
	total := st.TotalMembers
	if total < 1 {
		total = 1
	}
	v := models.Visitor{
		Type:         st.VisitorType,
		FullName:     st.Name,
		CNIC:         st.CNIC,
		Phone:        st.Phone,
		Email:        st.Email,
		Host:         st.HostConfirmed,
		Purpose:      st.Purpose,
		EntryTime:    e.now(),
		IsGroupVisit: st.IsGroupVisit,
		GroupID:      st.GroupID,
		TotalMembers: total,
		GroupMembers: st.GroupMembers,
	}
	if st.ScheduledMeeting != nil {
		v.ScheduledTime = st.ScheduledMeeting.Start.Format(time.RFC3339)
	}
	return v
}
