package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/domain"
	"github.com/cozn1l/gorosso/metrics"
)

// Fields holds the answers collected so far, keyed by step field name.
type Fields map[string]string

// Step is one question of a wizard. Parse validates the raw reply and returns
// the canonical string to store; a VALIDATION_FAILED error re-asks the same
// question without losing collected answers.
type Step struct {
	Field  string
	Prompt func(f Fields) string
	Parse  func(ctx context.Context, f Fields, raw string) (string, error)
}

// Definition is a complete wizard: an ordered list of steps and a commit that
// applies the collected answers in one shot.
type Definition struct {
	Name   string
	Steps  []Step
	Commit func(ctx context.Context, f Fields) (string, error)
}

// Outcome is what the engine wants said back to the admin.
type Outcome struct {
	Reply string
	// Done is set when the wizard committed and the session is gone.
	Done bool
}

// Engine advances wizard sessions step by step. All transitions for a given
// user are serialized, so rapid duplicate messages cannot double-apply a step.
type Engine struct {
	store   SessionStore
	defs    map[string]Definition
	metrics *metrics.Shop

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewEngine builds an engine over the given session store. metrics may be nil.
func NewEngine(store SessionStore, m *metrics.Shop) *Engine {
	return &Engine{
		store:   store,
		defs:    make(map[string]Definition),
		metrics: m,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Register adds a wizard definition. Registering is not safe concurrently
// with serving; do it during wiring.
func (e *Engine) Register(def Definition) {
	e.defs[def.Name] = def
}

func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// Start begins the named wizard for the user and returns the first question.
// Any session already in progress is discarded: the latest start wins.
func (e *Engine) Start(ctx context.Context, userID int64, name string) (string, error) {
	const op = "wizard.start"
	def, ok := e.defs[name]
	if !ok {
		return "", domain.Ef(domain.KindInternal, op, "unknown wizard %q", name)
	}

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	s := Session{
		Wizard:    name,
		Fields:    make(map[string]string),
		StartedAt: time.Now(),
	}
	if err := e.store.Put(ctx, userID, s); err != nil {
		return "", err
	}
	logger.SVCWizard.Info("wizard started",
		slog.String("event", "wizard.start"),
		slog.String("wizard", name),
		slog.Int64("user_id", userID),
	)
	return def.Steps[0].Prompt(s.Fields), nil
}

// Advance feeds the user's reply into their active session. With no active
// session it returns a NO_ACTIVE_SESSION error so the caller can fall back to
// normal message handling.
func (e *Engine) Advance(ctx context.Context, userID int64, input string) (Outcome, error) {
	const op = "wizard.advance"

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	s, ok, err := e.store.Get(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, domain.E(domain.KindNoActiveSession, op, "no wizard in progress")
	}
	def, ok := e.defs[s.Wizard]
	if !ok || s.Step < 0 || s.Step >= len(def.Steps) {
		// Stale session from an older deploy; drop it rather than wedge the user.
		_ = e.store.Delete(ctx, userID)
		return Outcome{}, domain.Ef(domain.KindInternal, op, "corrupt session for wizard %q", s.Wizard)
	}

	step := def.Steps[s.Step]
	value, err := step.Parse(ctx, s.Fields, input)
	if err != nil {
		if domain.IsKind(err, domain.KindValidationFailed) {
			logger.SVCWizard.Debug("step rejected",
				slog.String("event", "wizard.step"),
				slog.String("wizard", s.Wizard),
				slog.String("field", step.Field),
				slog.Int64("user_id", userID),
			)
			return Outcome{Reply: userMessage(err) + "\n\n" + step.Prompt(s.Fields)}, nil
		}
		_ = e.store.Delete(ctx, userID)
		return Outcome{}, err
	}

	s.Fields[step.Field] = value
	s.Step++

	if s.Step < len(def.Steps) {
		if err := e.store.Put(ctx, userID, s); err != nil {
			return Outcome{}, err
		}
		return Outcome{Reply: def.Steps[s.Step].Prompt(s.Fields)}, nil
	}

	// Last answer collected; the session is finished whether or not the
	// commit succeeds, so the admin never gets stuck mid-wizard.
	if err := e.store.Delete(ctx, userID); err != nil {
		return Outcome{}, err
	}
	summary, err := def.Commit(ctx, s.Fields)
	if err != nil {
		return Outcome{}, err
	}
	e.metrics.IncWizardCommit(s.Wizard)
	logger.SVCWizard.Info("wizard committed",
		slog.String("event", "wizard.commit"),
		slog.String("wizard", s.Wizard),
		slog.Int64("user_id", userID),
	)
	return Outcome{Reply: summary, Done: true}, nil
}

// Cancel drops the user's session if any, reporting whether one existed.
func (e *Engine) Cancel(ctx context.Context, userID int64) (bool, error) {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	s, ok, err := e.store.Get(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	if err := e.store.Delete(ctx, userID); err != nil {
		return false, err
	}
	logger.SVCWizard.Info("wizard cancelled",
		slog.String("event", "wizard.cancel"),
		slog.String("wizard", s.Wizard),
		slog.Int64("user_id", userID),
	)
	return true, nil
}

// InProgress reports whether the user has an active session. Store errors
// count as "no session" so a flaky Redis cannot swallow regular messages.
func (e *Engine) InProgress(userID int64) bool {
	_, ok, err := e.store.Get(context.Background(), userID)
	return err == nil && ok
}

func userMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return "That value does not look right, try again."
}

// ask wraps a fixed question as a prompt function.
func ask(text string) func(Fields) string {
	return func(Fields) string { return text }
}
