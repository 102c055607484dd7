package tui

import (
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
	"github.com/aakanksha-singh-hub/QueryBot/internal/history"
)

// SuggestionsMsg carries a refreshed reactive suggestion list. The suggester
// fires its callback from a timer goroutine, so the program runner forwards
// the update through Program.Send.
type SuggestionsMsg struct {
	Items []string
}

type answerMsg struct {
	followUps []string
	err       error
}

type domainSuggestionsMsg struct {
	items []string
	err   error
}

type exportDoneMsg struct {
	path string
	err  error
}

type speakDoneMsg struct {
	err error
}

type transcriptMsg struct {
	text string
	err  error
}

type healthMsg struct {
	err error
}

type schemaMsg struct {
	text string
	err  error
}

type historyListMsg struct {
	entries []history.Entry
	err     error
}

type historyLoadedMsg struct {
	messages []domain.Message
	err      error
}

type historyDeletedMsg struct {
	err error
}
