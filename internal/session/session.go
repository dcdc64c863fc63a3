// Package session owns the per-user generation state: the append-only history
// of generated cards, the card currently on screen and the custom prompt draft.
package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/cardsmith/internal/errors"
	"github.com/hpungsan/cardsmith/internal/llm"
)

// TimestampLayout formats Record.Timestamp (second precision).
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one completed generation. Records are never mutated once committed.
type Record struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	Timestamp    string    `json:"timestamp"`
	CreatedAt    time.Time `json:"-"`
	Style        string    `json:"style"`
	SystemPrompt string    `json:"system_prompt"`
	UserInput    string    `json:"user_input"`
	Markup       string    `json:"markup"`
}

// State names where a session is in its generate cycle.
type State string

const (
	StateIdle           State = "idle"
	StateGenerating     State = "generating"
	StateIdleWithResult State = "idle-with-result"
	StateIdleWithError  State = "idle-with-error"
)

// Session is one user's isolated generation state. All methods are safe for
// concurrent use; a single mutex guards every field so readers never observe
// the current card and the history out of step.
type Session struct {
	ID string

	mu         sync.Mutex
	history    []Record
	current    string
	hasCurrent bool
	draft      string
	input      string
	generating bool
	lastError  string
	entropy    io.Reader

	inflight sync.WaitGroup
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger for generation outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an empty session in the Idle state.
func New(id string, opts ...Option) *Session {
	s := &Session{
		ID:      id,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin enters the Generating state. At most one generation may be in flight.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return errors.NewGenerationInProgress()
	}
	s.generating = true
	s.lastError = ""
	return nil
}

// Commit records a successful generation: the record is appended and becomes
// the current card in one step.
func (s *Session) Commit(style, systemPrompt, userInput, markup string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := Record{
		ID:           ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Number:       len(s.history) + 1,
		Timestamp:    now.Format(TimestampLayout),
		CreatedAt:    now,
		Style:        style,
		SystemPrompt: systemPrompt,
		UserInput:    userInput,
		Markup:       markup,
	}
	s.history = append(s.history, rec)
	s.current = markup
	s.hasCurrent = true
	s.generating = false
	s.lastError = ""
	return rec
}

// Fail ends a generation without touching history or the current card.
func (s *Session) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	s.lastError = msg
}

// Generate runs one generation synchronously: Begin, call gen, then Commit or Fail.
// A failed generation returns GENERATION_FAILED and leaves the session unchanged
// apart from its transient error message.
func (s *Session) Generate(ctx context.Context, gen llm.Generator, style, systemPrompt, userInput string) (Record, error) {
	if err := s.Begin(); err != nil {
		return Record{}, err
	}
	return s.run(ctx, gen, style, systemPrompt, userInput)
}

// Start begins a generation and runs it in the background. The call is
// detached from ctx cancellation: once issued it runs to completion.
// Callers observe progress through Snapshot.
func (s *Session) Start(ctx context.Context, gen llm.Generator, style, systemPrompt, userInput string) error {
	if err := s.Begin(); err != nil {
		return err
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, _ = s.run(context.WithoutCancel(ctx), gen, style, systemPrompt, userInput)
	}()
	return nil
}

// Wait blocks until a generation started with Start has finished.
func (s *Session) Wait() {
	s.inflight.Wait()
}

func (s *Session) run(ctx context.Context, gen llm.Generator, style, systemPrompt, userInput string) (rec Record, err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			msg := fmt.Sprintf("internal error: %v", p)
			s.Fail(msg)
			s.logger.Error("generation panicked", "session", s.ID, "panic", p)
			rec, err = Record{}, errors.NewGenerationFailed(msg)
		}
	}()

	res := gen.Generate(ctx, systemPrompt, userInput)
	if !res.OK() {
		s.Fail(res.Err)
		s.logger.Warn("generation failed", "session", s.ID, "style", style, "error", res.Err,
			"duration", time.Since(start).Round(time.Millisecond))
		return Record{}, errors.NewGenerationFailed(res.Err)
	}

	rec = s.Commit(style, systemPrompt, userInput, res.Markup)
	s.logger.Info("card generated", "session", s.ID, "record", rec.ID, "style", style,
		"chars", len(res.Markup), "duration", time.Since(start).Round(time.Millisecond))
	return rec, nil
}

// SetDraft stores the custom prompt draft so it survives re-renders.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the custom prompt draft.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetInput keeps the card content of the latest attempt so a failed
// generation can be retried without retyping it.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

// ClearError drops the failure message once it has been shown. It is a
// no-op while generating or when msg is no longer the current error.
func (s *Session) ClearError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.generating && s.lastError == msg {
		s.lastError = ""
	}
}

// Record returns the history record with the given ID.
func (s *Session) Record(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.history {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, errors.NewNotFound(id)
}

// Snapshot returns a consistent copy of the session for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Record, len(s.history))
	copy(history, s.history)
	return Snapshot{
		ID:         s.ID,
		History:    history,
		Current:    s.current,
		HasCurrent: s.hasCurrent,
		Draft:      s.draft,
		Input:      s.input,
		Generating: s.generating,
		LastError:  s.lastError,
	}
}

// Snapshot is a point-in-time copy of a Session. Mutating it never affects the session.
type Snapshot struct {
	ID         string
	History    []Record
	Current    string
	HasCurrent bool
	Draft      string
	Input      string
	Generating bool
	LastError  string
}

// State reports the session's position in the generate cycle.
func (s Snapshot) State() State {
	switch {
	case s.Generating:
		return StateGenerating
	case s.LastError != "":
		return StateIdleWithError
	case s.HasCurrent:
		return StateIdleWithResult
	default:
		return StateIdle
	}
}

// Reversed returns the history newest first, as a new slice.
func (s Snapshot) Reversed() []Record {
	out := make([]Record, len(s.History))
	for i, r := range s.History {
		out[len(s.History)-1-i] = r
	}
	return out
}

// Earlier returns up to n records before the latest one, newest first.
func (s Snapshot) Earlier(n int) []Record {
	if len(s.History) < 2 || n <= 0 {
		return nil
	}
	rev := s.Reversed()[1:]
	if len(rev) > n {
		rev = rev[:n]
	}
	return rev
}

// Latest returns the most recent record, if any.
func (s Snapshot) Latest() (Record, bool) {
	if len(s.History) == 0 {
		return Record{}, false
	}
	return s.History[len(s.History)-1], true
}
