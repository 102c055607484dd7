package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aakanksha-singh-hub/QueryBot/internal/chart"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

const maxTableRows = 15

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.picking:
		b.WriteString(m.pickerView())
	case m.browsing:
		b.WriteString(m.browseView())
	default:
		b.WriteString(m.suggestionView())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusView())
	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("QueryBot")
	if d, ok := m.sess.ActiveDomain(); ok {
		title += "  " + domainStyle.Render(d.Name)
	}
	if t := m.sess.Title(); t != "" {
		title += "  " + statusStyle.Render(t)
	}
	return title
}

func (m Model) suggestionView() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.suggestions))
	for i, s := range m.suggestions {
		if i == m.sugIndex {
			parts = append(parts, suggestionActive.Render(s))
		} else {
			parts = append(parts, suggestionStyle.Render(s))
		}
	}
	line := strings.Join(parts, suggestionStyle.Render("  |  "))
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString("Choose a data domain:\n")
	for i, d := range domain.Catalog() {
		marker := "  "
		line := fmt.Sprintf("%s %s", d.Name, statusStyle.Render(d.Description))
		if i == m.pickIndex {
			marker = "> "
			line = suggestionActive.Render(d.Name) + " " + statusStyle.Render(d.Description)
		}
		b.WriteString(marker + line + "\n")
	}
	return pickerStyle.Render(b.String())
}

func (m Model) browseView() string {
	var b strings.Builder
	b.WriteString("Past sessions (enter opens, del removes, esc closes):\n")
	if len(m.histEntries) == 0 {
		b.WriteString(statusStyle.Render("  nothing saved yet") + "\n")
	}
	for i, e := range m.histEntries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%s  %s  %d messages", e.UpdatedAt.Format("2006-01-02 15:04"), title, e.Messages)
		if i == m.histIndex {
			line = suggestionActive.Render(line)
		} else {
			line = suggestionStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return pickerStyle.Render(b.String())
}

// renderSchema fills the viewport when the schema panel is toggled on.
func renderSchema(schema string) string {
	if schema == "" {
		return statusStyle.Render("Schema not loaded yet.")
	}
	return noticeStyle.Render("Backend schema (ctrl+g to close)") + "\n\n" + schema
}

func (m Model) statusView() string {
	switch {
	case m.recording:
		return recordStyle.Render(m.spin.View() + " recording, ctrl+r to stop")
	case m.pending:
		return statusStyle.Render(m.spin.View() + " thinking...")
	case m.status != "":
		if m.statusIsErr {
			return statusErrStyle.Render(m.status)
		}
		return statusStyle.Render(m.status)
	}
	return statusStyle.Render("enter ask | tab suggestion | ctrl+d domains | ctrl+t chart | ctrl+e/x export | ctrl+s speak | ctrl+r record | ctrl+g schema | ctrl+h history | ctrl+n new | ctrl+c quit")
}

// renderTranscript renders the whole conversation for the viewport.
func renderTranscript(transcript []domain.Message, kind chart.Kind, width int) string {
	var b strings.Builder
	for i, msg := range transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMessage(msg, kind, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMessage(msg domain.Message, kind chart.Kind, width int) string {
	switch msg.Kind {
	case domain.KindUser:
		return userStyle.Render("You: ") + msg.Text
	case domain.KindGeneratedQuery:
		return sqlStyle.Render(msg.Text)
	case domain.KindResultSet:
		return renderResults(msg.Results, kind, width)
	case domain.KindExplanation:
		return explanationStyle.Render(msg.Text)
	case domain.KindSystemNotice:
		return noticeStyle.Render(msg.Text)
	case domain.KindError:
		return errorStyle.Render(msg.Text)
	}
	return msg.Text
}

func renderResults(rs domain.ResultSet, kind chart.Kind, width int) string {
	if len(rs) == 0 {
		return explanationStyle.Render("(no rows)")
	}

	out := chart.Table(rs, maxTableRows)

	// Chart only when the data yields a category and a value column.
	if category, value, ok := chart.PickChartColumns(rs); ok {
		pts := chart.Points(rs, category, value)
		if rendered := chart.Render(kind, pts, width); rendered != "" {
			out += "\n" + rendered
		}
	}
	return out
}
