package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakanksha-singh-hub/QueryBot/internal/backend"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

type fakeQueryAPI struct {
	calls int32
	fn    func(ctx context.Context, question, domainID string) (*backend.Answer, error)
}

func (f *fakeQueryAPI) Query(ctx context.Context, question, domainID string) (*backend.Answer, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fn == nil {
		return &backend.Answer{}, nil
	}
	return f.fn(ctx, question, domainID)
}

func answerFixture() *backend.Answer {
	return &backend.Answer{
		SQLQuery: "SELECT * FROM employees",
		Results: domain.ResultSet{
			domain.NewRecord(
				domain.Field{Name: "name", Value: "Alice"},
				domain.Field{Name: "salary", Value: float64(50000)},
			),
		},
		Explanation: "Lists every employee.",
	}
}

func kinds(msgs []domain.Message) []domain.MessageKind {
	out := make([]domain.MessageKind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind
	}
	return out
}

func TestSubmit_AppendsUserMessageBeforeNetwork(t *testing.T) {
	sess := New()
	api := &fakeQueryAPI{}
	api.fn = func(ctx context.Context, question, domainID string) (*backend.Answer, error) {
		// By the time the request goes out the user message must already
		// be in the transcript.
		transcript := sess.Transcript()
		require.Len(t, transcript, 1)
		assert.Equal(t, domain.KindUser, transcript[0].Kind)
		assert.Equal(t, "Show all employees", transcript[0].Text)
		return answerFixture(), nil
	}

	_, err := NewDispatcher(sess, api).Submit(context.Background(), "  Show all employees  ")
	require.NoError(t, err)
}

func TestSubmit_SuccessAppendsThreeMessagesInOrder(t *testing.T) {
	sess := New()
	api := &fakeQueryAPI{fn: func(ctx context.Context, q, d string) (*backend.Answer, error) {
		return answerFixture(), nil
	}}

	answer, err := NewDispatcher(sess, api).Submit(context.Background(), "Show all employees")
	require.NoError(t, err)
	require.NotNil(t, answer)

	transcript := sess.Transcript()
	require.Equal(t, []domain.MessageKind{
		domain.KindUser,
		domain.KindGeneratedQuery,
		domain.KindResultSet,
		domain.KindExplanation,
	}, kinds(transcript))

	assert.Equal(t, "SELECT * FROM employees", transcript[1].Text)
	assert.Equal(t, []string{"name", "salary"}, transcript[2].Results.Columns())
	assert.Equal(t, "Lists every employee.", transcript[3].Text)
	assert.False(t, sess.Pending())
}

func TestSubmit_EmptyAnswerFieldsStillAppendThree(t *testing.T) {
	sess := New()
	api := &fakeQueryAPI{fn: func(ctx context.Context, q, d string) (*backend.Answer, error) {
		return &backend.Answer{}, nil
	}}

	_, err := NewDispatcher(sess, api).Submit(context.Background(), "anything")
	require.NoError(t, err)

	transcript := sess.Transcript()
	require.Len(t, transcript, 4)
	assert.Empty(t, transcript[1].Text)
	assert.Empty(t, transcript[2].Results)
	assert.Empty(t, transcript[3].Text)
}

func TestSubmit_FailureAppendsSingleErrorAndClearsPending(t *testing.T) {
	sess := New()
	api := &fakeQueryAPI{fn: func(ctx context.Context, q, d string) (*backend.Answer, error) {
		return nil, &backend.APIError{StatusCode: 400, Detail: "no such table: unicorns"}
	}}

	_, err := NewDispatcher(sess, api).Submit(context.Background(), "count unicorns")
	require.Error(t, err)

	transcript := sess.Transcript()
	require.Equal(t, []domain.MessageKind{domain.KindUser, domain.KindError}, kinds(transcript))
	assert.Equal(t, "no such table: unicorns", transcript[1].Text)
	assert.False(t, sess.Pending())
}

func TestSubmit_TransportFailureUsesGenericMessage(t *testing.T) {
	sess := New()
	api := &fakeQueryAPI{fn: func(ctx context.Context, q, d string) (*backend.Answer, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}

	_, err := NewDispatcher(sess, api).Submit(context.Background(), "anything")
	require.Error(t, err)

	transcript := sess.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, genericQueryError, transcript[1].Text)
}

func TestSubmit_EmptyInputIsNoOp(t *testing.T) {
	sess := New()
	api := &fakeQueryAPI{}
	d := NewDispatcher(sess, api)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := d.Submit(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}

	assert.Equal(t, 0, sess.Len())
	assert.Equal(t, int32(0), atomic.LoadInt32(&api.calls))
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	sess := New()

	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	api := &fakeQueryAPI{fn: func(ctx context.Context, q, d string) (*backend.Answer, error) {
		startedOnce.Do(func() { close(started) })
		<-release
		return answerFixture(), nil
	}}
	d := NewDispatcher(sess, api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := d.Submit(context.Background(), "first")
		assert.NoError(t, err)
	}()

	<-started
	_, err := d.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSubmissionPending)
	// The rejected submission appended nothing.
	assert.Equal(t, 1, sess.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.calls))

	close(release)
	wg.Wait()

	assert.Equal(t, 4, sess.Len())
	assert.False(t, sess.Pending())

	// The lock is free again for a manual resubmission.
	_, err = d.Submit(context.Background(), "second attempt")
	assert.NoError(t, err)
}

func TestSubmit_UsesActiveDomain(t *testing.T) {
	sess := New()
	active, ok := domain.LookupDomain("employee")
	require.True(t, ok)
	sess.Reset(&active)

	var gotDomain string
	api := &fakeQueryAPI{fn: func(ctx context.Context, q, d string) (*backend.Answer, error) {
		gotDomain = d
		return answerFixture(), nil
	}}

	_, err := NewDispatcher(sess, api).Submit(context.Background(), "Show all employees")
	require.NoError(t, err)
	assert.Equal(t, "employee", gotDomain)
}

func TestSubmit_EndToEndAgainstHTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"sql_query": "SELECT * FROM employees",
			"results": [{"name":"Alice","salary":50000}],
			"explanation": "Lists every employee."
		}`))
	}))
	defer srv.Close()

	sess := New()
	d := NewDispatcher(sess, backend.New(srv.URL, 0))

	_, err := d.Submit(context.Background(), "Show all employees")
	require.NoError(t, err)

	require.Equal(t, 4, sess.Len())
	rs, ok := sess.LatestResults()
	require.True(t, ok)
	assert.Equal(t, []string{"name", "salary"}, rs.Columns())
}
