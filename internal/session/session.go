package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

const maxTitleLen = 30

// Observer is notified after every transcript change. The history store
// hangs off this; observer failures are the observer's to log and must never
// surface as session errors.
type Observer interface {
	MessageAppended(sessionID uuid.UUID, seq int, msg domain.Message)
	SessionReset(sessionID uuid.UUID, active *domain.Domain)
}

// Session holds one conversation: the append-only transcript, the active
// data domain and the single in-flight submission lock. All mutation happens
// under one mutex so a multi-message append is atomic from any reader's
// point of view.
type Session struct {
	mu         sync.Mutex
	id         uuid.UUID
	title      string
	createdAt  time.Time
	transcript []domain.Message
	active     *domain.Domain
	pending    bool
	observer   Observer
}

// New creates an empty session.
func New() *Session {
	return &Session{
		id:        uuid.New(),
		createdAt: time.Now(),
	}
}

// SetObserver attaches a transcript observer. Pass nil to detach.
func (s *Session) SetObserver(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = obs
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Title returns the session title, derived from the first question.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Transcript returns a copy of the ordered message list.
func (s *Session) Transcript() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the transcript length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// ActiveDomain returns the selected data domain, if any.
func (s *Session) ActiveDomain() (domain.Domain, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return domain.Domain{}, false
	}
	return *s.active, true
}

// Pending reports whether a submission is in flight. The UI uses this to
// disable the send affordance.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Append adds one message to the transcript.
func (s *Session) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(msg)
}

// append adds a message while the lock is held and notifies the observer.
func (s *Session) append(msg domain.Message) {
	s.transcript = append(s.transcript, msg)
	if s.observer != nil {
		s.observer.MessageAppended(s.id, len(s.transcript)-1, msg)
	}
}

// Reset clears the transcript and gives the session a fresh identity. When a
// domain is given it becomes the active domain and exactly one system notice
// describing its tables and key metrics is appended.
func (s *Session) Reset(d *domain.Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = uuid.New()
	s.createdAt = time.Now()
	s.title = ""
	s.transcript = nil
	s.pending = false
	s.active = nil
	if d != nil {
		cp := *d
		s.active = &cp
	}

	if s.observer != nil {
		s.observer.SessionReset(s.id, s.active)
	}
	if s.active != nil {
		s.append(domain.NewTextMessage(domain.KindSystemNotice, s.active.Notice()))
	}
}

// LatestResults returns the most recent result_set payload in the
// transcript, scanning from the newest message backwards.
func (s *Session) LatestResults() (domain.ResultSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Kind == domain.KindResultSet {
			return s.transcript[i].Results, true
		}
	}
	return nil, false
}

// AskedQuestions returns every user question in transcript order. The UI
// filters starter questions against this list.
func (s *Session) AskedQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, msg := range s.transcript {
		if msg.Kind == domain.KindUser {
			out = append(out, msg.Text)
		}
	}
	return out
}

// beginSubmit atomically checks the pending lock and, when free, appends the
// user message and takes the lock. Returns ErrSubmissionPending when a
// submission is already in flight; in that case nothing is appended.
func (s *Session) beginSubmit(question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return ErrSubmissionPending
	}
	s.pending = true

	if s.title == "" {
		s.title = truncateTitle(question)
	}
	s.append(domain.NewTextMessage(domain.KindUser, question))
	return nil
}

// finishSubmit appends the outcome messages in one atomic step and releases
// the pending lock. Exactly one of answer/errText is used.
func (s *Session) finishSubmit(msgs []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.append(m)
	}
	s.pending = false
}

func truncateTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= maxTitleLen {
		return question
	}
	return string(runes[:maxTitleLen]) + "..."
}
