package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type periodsLoadedMsg struct {
	periods []ledger.FiscalPeriod
	err     error
}

// periodChangedMsg reports the result of closing or reopening a period.
type periodChangedMsg struct {
	period *ledger.FiscalPeriod
	err    error
}

type periodListModel struct {
	periods []ledger.FiscalPeriod
	cursor  int
	loading bool
	err     error
	width   int
	height  int
	session *session
}

func (m *periodListModel) init(s *session) tea.Cmd {
	m.loading = true
	m.session = s
	return func() tea.Msg {
		periods, err := s.client.ListPeriods(context.Background(), s.company)
		return periodsLoadedMsg{periods: periods, err: err}
	}
}

func (m periodListModel) update(msg tea.Msg) (periodListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case periodsLoadedMsg:
		m.loading = false
		m.periods = msg.periods
		m.err = msg.err
		if m.cursor >= len(m.periods) {
			m.cursor = max(len(m.periods)-1, 0)
		}

	case periodChangedMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.periods)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Close):
			return m, m.transition(true)
		case key.Matches(msg, keys.Reopen):
			return m, m.transition(false)
		}
	}
	return m, nil
}

// transition closes or reopens the selected period.
func (m *periodListModel) transition(closing bool) tea.Cmd {
	if m.session == nil || m.cursor < 0 || m.cursor >= len(m.periods) {
		return nil
	}
	s, id := m.session, m.periods[m.cursor].ID
	m.err = nil
	return func() tea.Msg {
		var p *ledger.FiscalPeriod
		var err error
		if closing {
			p, err = s.client.ClosePeriod(context.Background(), s.company, id)
		} else {
			p, err = s.client.ReopenPeriod(context.Background(), s.company, id)
		}
		return periodChangedMsg{period: p, err: err}
	}
}

func periodStatus(p *ledger.FiscalPeriod) string {
	if p.Closed {
		return "closed"
	}
	return "open"
}

func (m *periodListModel) view() string {
	if m.loading {
		return "Loading fiscal periods..."
	}
	if len(m.periods) == 0 {
		if m.err != nil {
			return errorStyle.Render("Error: " + m.err.Error())
		}
		return dimStyle.Render("No fiscal periods. Create one with 'bookkeeper period create'.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Fiscal Periods"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-6s %-4s %-14s %-10s %-10s %s", "YEAR", "NO", "NAME", "START", "END", "STATUS")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 12
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.periods) && i < start+maxRows; i++ {
		p := m.periods[i]
		line := fmt.Sprintf("  %-6d %-4d %-14s %-10s %-10s %s",
			p.Year, p.Number, p.Name, ledger.FormatDate(p.StartDate), ledger.FormatDate(p.EndDate), periodStatus(&p))
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case p.Closed:
			b.WriteString(closedStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d periods", len(m.periods)))
	}
	return b.String()
}
