package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

const commandTimeout = 60 * time.Second

func (m Model) submitCmd(question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		answer, err := m.dispatcher.Submit(ctx, question)
		if err != nil {
			return answerMsg{err: err}
		}
		return answerMsg{followUps: answer.Suggestions}
	}
}

func (m Model) domainSuggestionsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		items, err := m.suggester.ForActiveDomain(ctx)
		return domainSuggestionsMsg{items: items, err: err}
	}
}

func (m Model) exportCmd(format string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		path, err := m.exporter.Latest(ctx, m.sess, format)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) speakCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		return speakDoneMsg{err: m.bridge.Speak(ctx, text)}
	}
}

func (m Model) stopRecordingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		text, err := m.bridge.StopAndTranscribe(ctx)
		return transcriptMsg{text: text, err: err}
	}
}

func (m Model) healthCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return healthMsg{err: m.probe.Health(ctx)}
	}
}

func (m Model) schemaCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		raw, err := m.probe.Schema(ctx)
		if err != nil {
			return schemaMsg{err: err}
		}
		return schemaMsg{text: schemaText(raw)}
	}
}

// schemaText renders the backend's opaque schema payload for display. A bare
// JSON string (the demo backend's DDL dump) is unquoted; anything else is
// pretty-printed.
func schemaText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Indent(&buf, raw, "", "  ") == nil {
		return buf.String()
	}
	return string(raw)
}

func (m Model) historyListCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		entries, err := m.store.List(ctx)
		return historyListMsg{entries: entries, err: err}
	}
}

func (m Model) historyLoadCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		messages, err := m.store.Load(ctx, id)
		return historyLoadedMsg{messages: messages, err: err}
	}
}

func (m Model) historyDeleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		return historyDeletedMsg{err: m.store.Delete(ctx, id)}
	}
}
