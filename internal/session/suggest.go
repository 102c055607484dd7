package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the delay between the last keystroke and the reactive
// suggestion fetch. Zero disables debouncing entirely.
const DefaultDebounce = 250 * time.Millisecond

// SuggestionAPI is the slice of the backend client the suggester needs.
type SuggestionAPI interface {
	SuggestForQuestion(ctx context.Context, question string) ([]string, error)
	SuggestForDomain(ctx context.Context, domainID string) ([]string, error)
}

// Suggester maintains the candidate follow-up question list. The reactive
// path replaces the list per keystroke (debounced); the on-demand path
// fetches a domain's starter questions and requires an active domain.
type Suggester struct {
	session  *Session
	api      SuggestionAPI
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	gen      int
	current  []string
	onUpdate func([]string)
}

// NewSuggester creates a suggester bound to a session.
func NewSuggester(s *Session, api SuggestionAPI, debounce time.Duration) *Suggester {
	return &Suggester{session: s, api: api, debounce: debounce}
}

// SetOnUpdate registers a callback invoked whenever the suggestion list
// changes. It may be called from a timer goroutine.
func (s *Suggester) SetOnUpdate(fn func([]string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Current returns the latest suggestion list.
func (s *Suggester) Current() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.current))
	copy(out, s.current)
	return out
}

// InputChanged reacts to an input-field change. An empty trimmed text clears
// the suggestions synchronously with no network call; any in-flight fetch
// for older text is invalidated. Non-empty text schedules a fetch after the
// debounce interval, or fetches inline when debouncing is disabled.
func (s *Suggester) InputChanged(ctx context.Context, text string) {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if trimmed == "" {
		s.current = nil
		fn := s.onUpdate
		s.mu.Unlock()
		if fn != nil {
			fn(nil)
		}
		return
	}

	if s.debounce <= 0 {
		s.mu.Unlock()
		s.fetch(ctx, gen, trimmed)
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.fetch(ctx, gen, trimmed)
	})
	s.mu.Unlock()
}

// ForActiveDomain fetches the active domain's suggestions. With no domain
// selected it fails locally with ErrNoActiveDomain and issues no request.
func (s *Suggester) ForActiveDomain(ctx context.Context) ([]string, error) {
	active, ok := s.session.ActiveDomain()
	if !ok {
		return nil, ErrNoActiveDomain
	}
	return s.api.SuggestForDomain(ctx, active.ID)
}

func (s *Suggester) fetch(ctx context.Context, gen int, text string) {
	got, err := s.api.SuggestForQuestion(ctx, text)
	if err != nil {
		log.Debug().Err(err).Msg("suggestion fetch failed")
		got = nil
	}

	s.mu.Lock()
	if gen != s.gen {
		// A newer keystroke or clear superseded this fetch.
		s.mu.Unlock()
		return
	}
	s.current = got
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn(got)
	}
}
