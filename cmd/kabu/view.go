package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kabu/internal/app"
	"kabu/internal/dashboard"
	"kabu/internal/domain"
)

// Styles.
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	symbolStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolHlStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")) // orange for the selected symbol
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	deleteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	newsStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	busyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")) // black on yellow
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3)
	highlightBG   = lipgloss.Color("236") // dark grey background
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

func changeStyle(up bool) lipgloss.Style {
	if up {
		return gainStyle
	}
	return lossStyle
}

// Card row columns after the delete cell.
const (
	nameW   = 8
	priceW  = 10
	changeW = 10
)

func (m model) listWidth() int {
	return dashboard.DeleteColumns + nameW + 1 + priceW + 1 + changeW + 1 + m.sparkWidth + 1
}

func (m model) renderCards() string {
	if len(m.snap.Cards) == 0 {
		return dimStyle.Render(" (empty, press / to add)")
	}
	sp := " "
	var b strings.Builder
	for i, c := range m.snap.Cards {
		hl := i == m.cursor
		row := c.Row(m.sparkWidth)
		name := hlStyle(symbolStyle, hl)
		if c.Symbol == m.snap.Selected {
			name = hlStyle(symbolHlStyle, hl)
		}
		b.WriteString(hlStyle(deleteStyle, hl).Render(row.Delete))
		b.WriteString(name.Render(padOrTrunc(row.Name, nameW)))
		b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(sp))
		b.WriteString(hlStyle(priceStyle, hl).Render(padLeft(row.Price, priceW)))
		b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(sp))
		b.WriteString(hlStyle(changeStyle(row.Up), hl).Render(padLeft(row.Change, changeW)))
		b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(sp))
		b.WriteString(hlStyle(changeStyle(row.SparkUp), hl).Render(row.Spark))
		if i < len(m.snap.Cards)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m model) renderHeader() string {
	status := "select a symbol"
	if m.snap.Selected != "" {
		status = m.snap.Selected.String() + " detail"
	}
	left := fmt.Sprintf(" kabu │ %s │ %s ", status, domain.Periods[m.snap.Period].Label)
	if !m.busy {
		return headerStyle.Render(padOrTrunc(left, m.width))
	}
	busy := " " + m.busyLabel + "… "
	return headerStyle.Render(padOrTrunc(left, max(m.width-runewidth.StringWidth(busy), 0))) + busyStyle.Render(busy)
}

func (m model) renderDetail(width, height int) string {
	d := m.snap.Detail
	if d.Empty() {
		return dimStyle.Render(" select a symbol")
	}
	var b strings.Builder
	b.WriteString(" ")
	if d.Failed() {
		b.WriteString(symbolStyle.Render(d.Title()))
		b.WriteString("\n\n ")
		b.WriteString(lossStyle.Render(d.ErrorText()))
		return b.String()
	}
	b.WriteString(changeStyle(d.Up()).Bold(true).Render(d.Title()))
	b.WriteString("\n\n")
	b.WriteString(d.Chart(width-1, max(height-4, 2)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(d.Axis(width - 1)))
	return b.String()
}

func (m model) renderFooter() string {
	if m.mode == modeInput {
		return m.input.View()
	}
	return dimStyle.Render(" / add  ↑↓ move  enter select  d delete  [ ] period  1-5 open news  r refresh  q quit")
}

func (m model) renderModal() string {
	var body string
	switch m.mode {
	case modeNotice:
		title := "Info"
		style := modalStyle.BorderForeground(lipgloss.Color("12"))
		if m.notice.Kind == app.NoticeError {
			title = "Error"
			style = modalStyle.BorderForeground(lipgloss.Color("9"))
		}
		body = style.Render(fmt.Sprintf("%s\n\n%s\n\n%s", symbolStyle.Render(title), m.notice.Message, dimStyle.Render("enter to close")))
	case modeConfirm:
		body = modalStyle.BorderForeground(lipgloss.Color("11")).Render(
			fmt.Sprintf("Delete %s from the watchlist?\n\n%s", symbolStyle.Render(m.confirm.String()), dimStyle.Render("y / n")))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m model) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.mode == modeNotice || m.mode == modeConfirm {
		return m.renderModal()
	}

	bodyH := m.bodyHeight()
	left := lipgloss.NewStyle().Width(m.listWidth()).Height(bodyH).Render(m.list.View())
	rightW := max(m.width-m.listWidth()-1, 0)
	right := lipgloss.NewStyle().Width(rightW).Height(bodyH).MaxHeight(bodyH).
		Render(m.renderDetail(rightW, bodyH))
	sep := dimStyle.Render(strings.TrimRight(strings.Repeat("│\n", bodyH), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)

	return strings.Join([]string{
		m.renderHeader(),
		body,
		newsStyle.Render(m.ticker.View()),
		m.renderFooter(),
	}, "\n")
}

// padOrTrunc pads s with spaces to width cells, or truncates if longer.
func padOrTrunc(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	if runewidth.StringWidth(s) >= width {
		return s
	}
	return runewidth.FillLeft(s, width)
}
