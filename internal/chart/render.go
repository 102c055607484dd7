package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var pieColors = []string{"69", "168", "114", "179", "141", "74", "203", "108"}

// Render draws points as the requested chart kind, fitting within width
// columns. An empty point list renders an explanatory placeholder.
func Render(kind Kind, pts []Point, width int) string {
	if len(pts) == 0 {
		return faintStyle.Render("(nothing to chart)")
	}
	if width < 20 {
		width = 20
	}
	switch kind {
	case Line:
		return renderLine(pts, width)
	case Pie:
		return renderPie(pts)
	default:
		return renderBar(pts, width)
	}
}

func renderBar(pts []Point, width int) string {
	labelWidth := 0
	maxVal := 0.0
	for _, p := range pts {
		if w := runewidth.StringWidth(p.Name); w > labelWidth {
			labelWidth = w
		}
		if math.Abs(p.Value) > maxVal {
			maxVal = math.Abs(p.Value)
		}
	}
	if labelWidth > 20 {
		labelWidth = 20
	}

	barSpace := width - labelWidth - 14
	if barSpace < 5 {
		barSpace = 5
	}

	var b strings.Builder
	for _, p := range pts {
		name := runewidth.Truncate(p.Name, labelWidth, "…")
		cells := 0
		if maxVal > 0 {
			cells = int(math.Round(math.Abs(p.Value) / maxVal * float64(barSpace)))
		}
		if cells == 0 && p.Value != 0 {
			cells = 1
		}
		b.WriteString(labelStyle.Render(runewidth.FillRight(name, labelWidth)))
		b.WriteString(" ")
		b.WriteString(barStyle.Render(strings.Repeat("█", cells)))
		b.WriteString(faintStyle.Render(fmt.Sprintf(" %s", formatValue(p.Value))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderLine draws values as a fixed-height column plot, one column per
// point, with the category names listed underneath.
func renderLine(pts []Point, width int) string {
	const height = 8

	minVal, maxVal := pts[0].Value, pts[0].Value
	for _, p := range pts {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	span := maxVal - minVal
	if span == 0 {
		span = 1
	}

	levels := make([]int, len(pts))
	for i, p := range pts {
		levels[i] = int(math.Round((p.Value - minVal) / span * float64(height-1)))
	}

	var b strings.Builder
	for row := height - 1; row >= 0; row-- {
		for _, lvl := range levels {
			switch {
			case lvl == row:
				b.WriteString(barStyle.Render("●"))
			case lvl > row:
				b.WriteString(barStyle.Render("│"))
			default:
				b.WriteString(faintStyle.Render("·"))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	for i, p := range pts {
		b.WriteString(faintStyle.Render(fmt.Sprintf("%d:%s", i+1, runewidth.Truncate(p.Name, 14, "…"))))
		if i < len(pts)-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}

func renderPie(pts []Point) string {
	total := 0.0
	for _, p := range pts {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total == 0 {
		return faintStyle.Render("(no positive values to chart)")
	}

	var b strings.Builder
	for i, p := range pts {
		if p.Value <= 0 {
			continue
		}
		share := p.Value / total
		swatch := lipgloss.NewStyle().
			Foreground(lipgloss.Color(pieColors[i%len(pieColors)])).
			Render(strings.Repeat("■", 1+int(share*24)))
		b.WriteString(fmt.Sprintf("%s %s %.1f%% (%s)\n",
			swatch,
			labelStyle.Render(p.Name),
			share*100,
			formatValue(p.Value),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Table renders a result set as an aligned text table, capped at maxRows
// data rows with a truncation note.
func Table(rs domain.ResultSet, maxRows int) string {
	if len(rs) == 0 {
		return faintStyle.Render("(empty result set)")
	}

	cols := rs.Columns()
	shown := rs
	truncated := false
	if maxRows > 0 && len(rs) > maxRows {
		shown = rs[:maxRows]
		truncated = true
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	cells := make([][]string, len(shown))
	for r, rec := range shown {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			v, _ := rec.Get(c)
			cells[r][i] = formatCell(v)
			if w := runewidth.StringWidth(cells[r][i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, c := range cols {
		b.WriteString(headerStyle.Render(runewidth.FillRight(c, widths[i])))
		if i < len(cols)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")
	for i := range cols {
		b.WriteString(faintStyle.Render(strings.Repeat("─", widths[i])))
		if i < len(cols)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")
	for _, row := range cells {
		for i, cell := range row {
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			if i < len(cols)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	if truncated {
		b.WriteString(faintStyle.Render(fmt.Sprintf("… %d more rows", len(rs)-maxRows)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCell(v domain.Value) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return formatValue(n)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", n)
	}
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
