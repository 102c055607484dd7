// Package tui is the terminal chat interface: a transcript viewport over an
// input line, with reactive suggestions, domain selection, charts, export
// and speech bound to control keys.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/aakanksha-singh-hub/QueryBot/internal/chart"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
	"github.com/aakanksha-singh-hub/QueryBot/internal/history"
	"github.com/aakanksha-singh-hub/QueryBot/internal/session"
	"github.com/aakanksha-singh-hub/QueryBot/internal/speech"
)

// Exporter saves the latest result set to a file.
type Exporter interface {
	Latest(ctx context.Context, sess *session.Session, format string) (string, error)
}

// SpeechBridge is the voice side of the UI.
type SpeechBridge interface {
	StartRecording(ctx context.Context) error
	StopAndTranscribe(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) error
}

// BackendProbe is the startup side of the backend client: reachability and
// the schema panel payload.
type BackendProbe interface {
	Health(ctx context.Context) error
	Schema(ctx context.Context) (json.RawMessage, error)
}

// TitleStore persists the session title once the first question sets it.
type TitleStore interface {
	SetTitle(sessionID uuid.UUID, title string)
}

// HistoryBrowser is the stored-session side of the UI: list, reopen and
// delete past conversations. May be nil when history is disabled.
type HistoryBrowser interface {
	TitleStore
	List(ctx context.Context) ([]history.Entry, error)
	Load(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	sess       *session.Session
	dispatcher *session.Dispatcher
	suggester  *session.Suggester
	exporter   Exporter
	bridge     SpeechBridge
	probe      BackendProbe
	store      HistoryBrowser

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	keys     KeyMap

	chartKind   chart.Kind
	suggestions []string
	sugIndex    int

	picking   bool
	pickIndex int

	schema     string
	showSchema bool

	browsing    bool
	histEntries []history.Entry
	histIndex   int
	past        []domain.Message

	pending   bool
	recording bool

	status      string
	statusIsErr bool

	width  int
	height int
	ready  bool
}

// New assembles the chat model. bridge and store may be nil.
func New(sess *session.Session, dispatcher *session.Dispatcher, suggester *session.Suggester, exporter Exporter, bridge SpeechBridge, probe BackendProbe, store HistoryBrowser) Model {
	input := textinput.New()
	input.Placeholder = "Ask a question about your data..."
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		sess:       sess,
		dispatcher: dispatcher,
		suggester:  suggester,
		exporter:   exporter,
		bridge:     bridge,
		probe:      probe,
		store:      store,
		input:      input,
		spin:       spin,
		keys:       DefaultKeyMap(),
		chartKind:  chart.Bar,
		sugIndex:   -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.healthCmd(), m.schemaCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := 6
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case answerMsg:
		m.pending = false
		m.refreshTranscript()
		m.viewport.GotoBottom()
		switch {
		case msg.err == nil:
			m.setStatus("", false)
			// Follow-up questions returned inline with the answer.
			if len(msg.followUps) > 0 {
				m.suggestions = filterAsked(msg.followUps, m.sess.AskedQuestions())
				m.sugIndex = -1
			}
		case errors.Is(msg.err, session.ErrEmptyQuestion):
			m.setStatus("Type a question first.", true)
		case errors.Is(msg.err, session.ErrSubmissionPending):
			m.setStatus("Still working on the previous question.", true)
		default:
			// The dispatcher already appended the error to the transcript.
			m.setStatus("", false)
		}
		if m.store != nil && m.sess.Title() != "" {
			m.store.SetTitle(m.sess.ID(), m.sess.Title())
		}
		return m, nil

	case SuggestionsMsg:
		m.suggestions = filterAsked(msg.Items, m.sess.AskedQuestions())
		m.sugIndex = -1
		return m, nil

	case domainSuggestionsMsg:
		if msg.err != nil {
			m.setStatus("Could not fetch suggestions.", true)
			return m, nil
		}
		m.suggestions = filterAsked(msg.items, m.sess.AskedQuestions())
		m.sugIndex = -1
		if len(m.suggestions) == 0 {
			m.setStatus("No suggestions for this domain.", false)
		}
		return m, nil

	case schemaMsg:
		if msg.err == nil {
			m.schema = msg.text
		}
		return m, nil

	case historyListMsg:
		if msg.err != nil {
			m.setStatus("Could not load history.", true)
			return m, nil
		}
		m.histEntries = msg.entries
		m.histIndex = 0
		m.browsing = true
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.setStatus("Could not open that session.", true)
			return m, nil
		}
		m.past = msg.messages
		m.browsing = false
		m.refreshTranscript()
		m.viewport.GotoTop()
		m.setStatus("Viewing a past session. ctrl+n returns to the live chat.", false)
		return m, nil

	case historyDeletedMsg:
		if msg.err != nil {
			m.setStatus("Could not delete that session.", true)
			return m, nil
		}
		return m, m.historyListCmd()

	case exportDoneMsg:
		switch {
		case msg.err == nil:
			m.setStatus("Saved "+msg.path, false)
		case errors.Is(msg.err, session.ErrNoResults):
			m.setStatus("Nothing to export yet.", true)
		default:
			m.setStatus("Export failed.", true)
		}
		return m, nil

	case speakDoneMsg:
		switch {
		case msg.err == nil:
			m.setStatus("", false)
		case errors.Is(msg.err, speech.ErrNotSupported):
			m.setStatus("Voice output is not available on this system.", true)
		default:
			var synth *speech.SynthesisError
			if errors.As(msg.err, &synth) {
				m.setStatus("Could not synthesize speech.", true)
			} else {
				m.setStatus("Could not play audio.", true)
			}
		}
		return m, nil

	case transcriptMsg:
		m.recording = false
		if msg.err != nil {
			if errors.Is(msg.err, speech.ErrNotSupported) {
				m.setStatus("Voice input is not available on this system.", true)
			} else {
				m.setStatus("Transcription failed.", true)
			}
			return m, nil
		}
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		m.setStatus("", false)
		return m, m.inputChanged()

	case healthMsg:
		if msg.err != nil {
			m.setStatus("Backend unreachable. Check API_URL and try again.", true)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picking {
		return m.handlePickerKey(msg)
	}
	if m.browsing {
		return m.handleBrowseKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.showSchema {
			m.showSchema = false
			m.refreshTranscript()
			return m, nil
		}
		m.suggestions = nil
		m.sugIndex = -1
		m.setStatus("", false)
		return m, nil

	case key.Matches(msg, m.keys.Schema):
		m.showSchema = !m.showSchema
		m.refreshTranscript()
		if m.showSchema && m.schema == "" {
			return m, m.schemaCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.History):
		if m.store == nil {
			m.setStatus("History is disabled.", true)
			return m, nil
		}
		return m, m.historyListCmd()

	case key.Matches(msg, m.keys.Domains):
		m.picking = true
		m.pickIndex = 0
		return m, nil

	case key.Matches(msg, m.keys.NewSession):
		if m.past != nil {
			// Return to the live session without resetting it.
			m.past = nil
			m.setStatus("", false)
			m.refreshTranscript()
			m.viewport.GotoBottom()
			return m, nil
		}
		var active *domain.Domain
		if d, ok := m.sess.ActiveDomain(); ok {
			active = &d
		}
		m.sess.Reset(active)
		m.suggestions = nil
		m.sugIndex = -1
		m.input.SetValue("")
		m.refreshTranscript()
		if active != nil {
			return m, m.domainSuggestionsCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Suggestion):
		if len(m.suggestions) > 0 {
			m.sugIndex = (m.sugIndex + 1) % len(m.suggestions)
			m.input.SetValue(m.suggestions[m.sugIndex])
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.ChartKind):
		m.chartKind = nextChartKind(m.chartKind)
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.ExportCSV):
		return m, m.exportCmd(domain.FormatCSV)

	case key.Matches(msg, m.keys.ExportXLSX):
		return m, m.exportCmd(domain.FormatXLSX)

	case key.Matches(msg, m.keys.Speak):
		text, ok := latestExplanation(m.sess.Transcript())
		if !ok {
			m.setStatus("Nothing to read aloud yet.", true)
			return m, nil
		}
		return m, m.speakCmd(text)

	case key.Matches(msg, m.keys.Record):
		return m.toggleRecording()

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.sugIndex = -1
		return m, tea.Batch(cmd, m.inputChanged())
	}
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	catalog := domain.Catalog()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picking = false
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.pickIndex = (m.pickIndex + len(catalog) - 1) % len(catalog)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.pickIndex = (m.pickIndex + 1) % len(catalog)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		picked := catalog[m.pickIndex]
		m.picking = false
		m.sess.Reset(&picked)
		m.suggestions = nil
		m.sugIndex = -1
		m.input.SetValue("")
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, m.domainSuggestionsCmd()
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.browsing = false
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if len(m.histEntries) > 0 {
			m.histIndex = (m.histIndex + len(m.histEntries) - 1) % len(m.histEntries)
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if len(m.histEntries) > 0 {
			m.histIndex = (m.histIndex + 1) % len(m.histEntries)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if len(m.histEntries) > 0 {
			return m, m.historyDeleteCmd(m.histEntries[m.histIndex].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if len(m.histEntries) > 0 {
			return m, m.historyLoadCmd(m.histEntries[m.histIndex].ID)
		}
		m.browsing = false
		return m, nil
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		m.setStatus("Type a question first.", true)
		return m, nil
	}
	if m.pending {
		m.setStatus("Still working on the previous question.", true)
		return m, nil
	}

	m.pending = true
	m.input.SetValue("")
	m.suggestions = nil
	m.sugIndex = -1
	m.setStatus("", false)
	return m, tea.Batch(m.submitCmd(question), m.spin.Tick, m.inputChanged())
}

func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.bridge == nil {
		m.setStatus("Voice input is not available on this system.", true)
		return m, nil
	}
	if m.recording {
		return m, m.stopRecordingCmd()
	}

	if err := m.bridge.StartRecording(context.Background()); err != nil {
		if errors.Is(err, speech.ErrNotSupported) {
			m.setStatus("Voice input is not available on this system.", true)
		} else {
			m.setStatus("Could not start recording.", true)
		}
		return m, nil
	}
	m.recording = true
	m.setStatus("", false)
	return m, m.spin.Tick
}

// inputChanged forwards the current input text to the suggester. The fetch
// itself lands later through SuggestionsMsg.
func (m Model) inputChanged() tea.Cmd {
	text := m.input.Value()
	return func() tea.Msg {
		m.suggester.InputChanged(context.Background(), text)
		return nil
	}
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	switch {
	case m.showSchema:
		m.viewport.SetContent(renderSchema(m.schema))
	case m.past != nil:
		m.viewport.SetContent(renderTranscript(m.past, m.chartKind, m.viewport.Width))
	default:
		m.viewport.SetContent(renderTranscript(m.sess.Transcript(), m.chartKind, m.viewport.Width))
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
}

func nextChartKind(k chart.Kind) chart.Kind {
	switch k {
	case chart.Bar:
		return chart.Line
	case chart.Line:
		return chart.Pie
	default:
		return chart.Bar
	}
}

// filterAsked drops suggestions the user already asked this session.
func filterAsked(items, asked []string) []string {
	if len(asked) == 0 {
		return items
	}
	seen := make(map[string]bool, len(asked))
	for _, q := range asked {
		seen[q] = true
	}
	var out []string
	for _, s := range items {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// latestExplanation returns the newest explanation message's text.
func latestExplanation(transcript []domain.Message) (string, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Kind == domain.KindExplanation {
			return transcript[i].Text, true
		}
	}
	return "", false
}
