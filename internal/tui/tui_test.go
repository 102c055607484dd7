package tui

import (
	"context"
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakanksha-singh-hub/QueryBot/internal/backend"
	"github.com/aakanksha-singh-hub/QueryBot/internal/chart"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
	"github.com/aakanksha-singh-hub/QueryBot/internal/session"
	"github.com/aakanksha-singh-hub/QueryBot/internal/speech"
)

type fakeAPI struct{}

func (fakeAPI) Query(ctx context.Context, question, domainID string) (*backend.Answer, error) {
	return &backend.Answer{SQLQuery: "SELECT 1", Explanation: "one"}, nil
}

func (fakeAPI) SuggestForQuestion(ctx context.Context, question string) ([]string, error) {
	return []string{"Sales by month"}, nil
}

func (fakeAPI) SuggestForDomain(ctx context.Context, domainID string) ([]string, error) {
	return []string{"Show all employees"}, nil
}

type fakeExporter struct {
	path string
	err  error
}

func (f fakeExporter) Latest(ctx context.Context, sess *session.Session, format string) (string, error) {
	return f.path, f.err
}

type fakeProbe struct{ err error }

func (f fakeProbe) Health(ctx context.Context) error { return f.err }

func (f fakeProbe) Schema(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`"CREATE TABLE employees (id INTEGER);"`), f.err
}

func newTestModel() Model {
	sess := session.New()
	api := fakeAPI{}
	m := New(
		sess,
		session.NewDispatcher(sess, api),
		session.NewSuggester(sess, api, 0),
		fakeExporter{path: "query-results.csv"},
		nil,
		fakeProbe{},
		nil,
	)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

func TestNextChartKind_Cycles(t *testing.T) {
	assert.Equal(t, chart.Line, nextChartKind(chart.Bar))
	assert.Equal(t, chart.Pie, nextChartKind(chart.Line))
	assert.Equal(t, chart.Bar, nextChartKind(chart.Pie))
}

func TestLatestExplanation(t *testing.T) {
	transcript := []domain.Message{
		domain.NewTextMessage(domain.KindUser, "q1"),
		domain.NewTextMessage(domain.KindExplanation, "first"),
		domain.NewTextMessage(domain.KindUser, "q2"),
		domain.NewTextMessage(domain.KindExplanation, "second"),
	}

	text, ok := latestExplanation(transcript)
	require.True(t, ok)
	assert.Equal(t, "second", text)

	_, ok = latestExplanation(nil)
	assert.False(t, ok)
}

func TestRenderTranscript_ShowsEveryKind(t *testing.T) {
	transcript := []domain.Message{
		domain.NewTextMessage(domain.KindUser, "Total sales by region"),
		domain.NewTextMessage(domain.KindGeneratedQuery, "SELECT region FROM sales"),
		domain.NewResultMessage(domain.ResultSet{
			domain.NewRecord(
				domain.Field{Name: "region", Value: "West"},
				domain.Field{Name: "total", Value: 42.0},
			),
		}),
		domain.NewTextMessage(domain.KindExplanation, "Totals per region."),
		domain.NewTextMessage(domain.KindError, "boom"),
	}

	out := renderTranscript(transcript, chart.Bar, 80)

	assert.Contains(t, out, "Total sales by region")
	assert.Contains(t, out, "SELECT region FROM sales")
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "West")
	assert.Contains(t, out, "Totals per region.")
	assert.Contains(t, out, "boom")
}

func TestRenderResults_EmptySet(t *testing.T) {
	out := renderResults(domain.ResultSet{}, chart.Bar, 80)
	assert.Contains(t, out, "no rows")
}

func TestSubmit_EmptyInputSetsStatus(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "Type a question first.", updated.(Model).status)
}

func TestSubmit_SecondSubmissionBlockedWhilePending(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("Show all employees")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = updated.(Model)
	assert.True(t, m.pending)

	m.input.SetValue("another question")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Still working on the previous question.", updated.(Model).status)
}

func TestSuggestionKey_FillsInput(t *testing.T) {
	m := newTestModel()
	m.suggestions = []string{"Show all employees", "Sales by month"}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, "Show all employees", m.input.Value())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Sales by month", updated.(Model).input.Value())
}

func TestDomainPicker_SelectResetsSession(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = updated.(Model)
	require.True(t, m.picking)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.False(t, m.picking)
	assert.NotNil(t, cmd)

	d, ok := m.sess.ActiveDomain()
	require.True(t, ok)
	assert.Equal(t, "sales", d.ID)

	transcript := m.sess.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, domain.KindSystemNotice, transcript[0].Kind)
}

func TestExportDone_NoResults(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(exportDoneMsg{err: session.ErrNoResults})
	assert.Equal(t, "Nothing to export yet.", updated.(Model).status)
}

func TestExportDone_Success(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(exportDoneMsg{path: "query-results.xlsx"})
	assert.Equal(t, "Saved query-results.xlsx", updated.(Model).status)
}

func TestAnswerMsg_FollowUpsBecomeSuggestions(t *testing.T) {
	m := newTestModel()
	m.pending = true

	updated, _ := m.Update(answerMsg{followUps: []string{"Sales by region", "Top products"}})
	m = updated.(Model)

	assert.False(t, m.pending)
	assert.Equal(t, []string{"Sales by region", "Top products"}, m.suggestions)
}

func TestSuggestionsMsg_ReplacesList(t *testing.T) {
	m := newTestModel()
	m.suggestions = []string{"old"}
	m.sugIndex = 0

	updated, _ := m.Update(SuggestionsMsg{Items: []string{"new one", "new two"}})
	m = updated.(Model)
	assert.Equal(t, []string{"new one", "new two"}, m.suggestions)
	assert.Equal(t, -1, m.sugIndex)
}

func TestDomainSuggestions_EmptyShowsPlaceholder(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(domainSuggestionsMsg{items: []string{}})
	m = updated.(Model)

	assert.Empty(t, m.suggestions)
	assert.Equal(t, "No suggestions for this domain.", m.status)
	assert.False(t, m.statusIsErr)
}

func TestDomainSuggestions_FailureShowsStatus(t *testing.T) {
	m := newTestModel()
	m.suggestions = []string{"kept"}

	updated, _ := m.Update(domainSuggestionsMsg{err: assert.AnError})
	m = updated.(Model)

	assert.Equal(t, "Could not fetch suggestions.", m.status)
	assert.True(t, m.statusIsErr)
	assert.Equal(t, []string{"kept"}, m.suggestions, "a failed fetch must not clear the current list")
}

func TestSpeakDone_DistinguishesFailures(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(speakDoneMsg{err: &speech.PlaybackError{Err: speech.ErrNotSupported}})
	assert.Equal(t, "Voice output is not available on this system.", updated.(Model).status)

	updated, _ = m.Update(speakDoneMsg{err: &speech.SynthesisError{Err: assert.AnError}})
	assert.Equal(t, "Could not synthesize speech.", updated.(Model).status)

	updated, _ = m.Update(speakDoneMsg{err: &speech.PlaybackError{Err: assert.AnError}})
	assert.Equal(t, "Could not play audio.", updated.(Model).status)
}

func TestRecord_WithoutBridge(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, "Voice input is not available on this system.", updated.(Model).status)
}

func TestHealthMsg_FailureShowsStatus(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(healthMsg{err: assert.AnError})
	assert.Contains(t, updated.(Model).status, "Backend unreachable")
}

func TestFilterAsked(t *testing.T) {
	items := []string{"Show all employees", "Sales by month", "Show all projects"}
	asked := []string{"Sales by month"}

	assert.Equal(t, []string{"Show all employees", "Show all projects"}, filterAsked(items, asked))
	assert.Equal(t, items, filterAsked(items, nil))
}

func TestSchemaText(t *testing.T) {
	assert.Equal(t, "CREATE TABLE t (id INTEGER);", schemaText(json.RawMessage(`"CREATE TABLE t (id INTEGER);"`)))
	assert.Contains(t, schemaText(json.RawMessage(`{"tables":["sales"]}`)), `"sales"`)
}

func TestSchemaToggle_ShowsSchemaInViewport(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(schemaMsg{text: "CREATE TABLE employees (id INTEGER);"})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = updated.(Model)
	require.True(t, m.showSchema)
	assert.Contains(t, m.viewport.View(), "CREATE TABLE employees")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	assert.False(t, updated.(Model).showSchema)
}

func TestHistoryBrowse_WithoutStore(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlH})
	assert.Nil(t, cmd)
	assert.Equal(t, "History is disabled.", updated.(Model).status)
}

func TestHistoryLoaded_EntersPastView(t *testing.T) {
	m := newTestModel()

	past := []domain.Message{domain.NewTextMessage(domain.KindUser, "old question")}
	updated, _ := m.Update(historyLoadedMsg{messages: past})
	m = updated.(Model)

	assert.NotNil(t, m.past)
	assert.Contains(t, m.viewport.View(), "old question")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updated.(Model)
	assert.Nil(t, m.past)
}
