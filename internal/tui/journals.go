package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type journalsLoadedMsg struct {
	journals []ledger.Journal
	err      error
}

// journalListModel lists journals in the session's reporting window.
type journalListModel struct {
	journals []ledger.Journal
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *journalListModel) init(s *session) tea.Cmd {
	m.loading = true
	r := ledger.DateRange{From: s.from(), To: s.asOf}
	return func() tea.Msg {
		journals, err := s.client.ListJournals(context.Background(), s.company, r)
		return journalsLoadedMsg{journals: journals, err: err}
	}
}

func (m journalListModel) update(msg tea.Msg) (journalListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case journalsLoadedMsg:
		m.loading = false
		m.journals = msg.journals
		m.err = msg.err
		if m.cursor >= len(m.journals) {
			m.cursor = max(len(m.journals)-1, 0)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.journals)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *journalListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.journals) {
		return m.journals[m.cursor].ID
	}
	return ""
}

func (m *journalListModel) view() string {
	if m.loading {
		return "Loading journals..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.journals) == 0 {
		return dimStyle.Render("No journals in this window.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Journals"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-12s %-10s %-6s %15s  %s", "NUMBER", "DATE", "LINES", "AMOUNT", "DESCRIPTION")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.journals) && i < start+maxRows; i++ {
		j := m.journals[i]
		desc := j.Description
		if len(desc) > 40 {
			desc = desc[:38] + ".."
		}
		debit, _ := ledger.Totals(j.Lines)

		line := fmt.Sprintf("  %-12s %-10s %-6d %15s  %s",
			j.Number,
			ledger.FormatDate(j.Date),
			len(j.Lines),
			ledger.FormatAmount(debit),
			desc,
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d journals", len(m.journals)))
	return b.String()
}
