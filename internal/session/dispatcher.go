package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/backend"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// genericQueryError is shown when a submission fails without a
// backend-reported detail.
const genericQueryError = "An error occurred while processing your request."

// QueryAPI is the slice of the backend client the dispatcher needs.
type QueryAPI interface {
	Query(ctx context.Context, question, domainID string) (*backend.Answer, error)
}

// Dispatcher drives one submission from user input to transcript update.
type Dispatcher struct {
	session *Session
	api     QueryAPI
}

// NewDispatcher creates a dispatcher bound to a session.
func NewDispatcher(s *Session, api QueryAPI) *Dispatcher {
	return &Dispatcher{session: s, api: api}
}

// Submit sends a question to the backend and appends the outcome to the
// transcript.
//
// Ordering: the user message is appended synchronously before any network
// activity. On success exactly three messages follow in fixed order
// (generated_query, result_set, explanation), even when any of the three is
// empty. On failure a single error message follows, with the backend's
// detail verbatim when it reported one. The pending lock is released
// unconditionally.
//
// An empty or whitespace-only question returns ErrEmptyQuestion with no
// message appended and no request issued. A submission while another is in
// flight returns ErrSubmissionPending the same way; resubmission is manual,
// there is no retry and no queueing.
func (d *Dispatcher) Submit(ctx context.Context, questionText string) (*backend.Answer, error) {
	question := strings.TrimSpace(questionText)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if err := d.session.beginSubmit(question); err != nil {
		return nil, err
	}

	var domainID string
	if active, ok := d.session.ActiveDomain(); ok {
		domainID = active.ID
	}

	answer, err := d.api.Query(ctx, question, domainID)
	if err != nil {
		log.Error().Err(err).Str("question", question).Msg("query failed")
		d.session.finishSubmit([]domain.Message{
			domain.NewTextMessage(domain.KindError, backend.UserMessage(err, genericQueryError)),
		})
		return nil, err
	}

	d.session.finishSubmit([]domain.Message{
		domain.NewTextMessage(domain.KindGeneratedQuery, answer.SQLQuery),
		domain.NewResultMessage(answer.Results),
		domain.NewTextMessage(domain.KindExplanation, answer.Explanation),
	})
	return answer, nil
}
