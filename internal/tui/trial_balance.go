package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type trialBalanceLoadedMsg struct {
	tb  *ledger.TrialBalance
	err error
}

type trialBalanceModel struct {
	tb      *ledger.TrialBalance
	offset  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *trialBalanceModel) init(s *session) tea.Cmd {
	m.loading = true
	asOf := s.asOf
	return func() tea.Msg {
		tb, err := s.client.TrialBalance(context.Background(), s.company, asOf)
		return trialBalanceLoadedMsg{tb: tb, err: err}
	}
}

func (m trialBalanceModel) update(msg tea.Msg) (trialBalanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trialBalanceLoadedMsg:
		m.loading = false
		m.tb = msg.tb
		m.err = msg.err
		m.offset = 0
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, keys.Down):
			if m.tb != nil && m.offset < len(m.tb.Entries)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m *trialBalanceModel) view() string {
	if m.loading {
		return "Loading trial balance..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.tb == nil {
		return dimStyle.Render("No data available.")
	}

	var b strings.Builder
	w := reportWidth(m.width)
	tb := m.tb

	b.WriteString(titleStyle.Render(centerStr("TRIAL BALANCE", w)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(centerStr("as of "+ledger.FormatDate(tb.AsOfDate), w)))
	b.WriteString("\n\n")

	header := fmt.Sprintf("  %-8s %-34s %15s %15s", "CODE", "NAME", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 10
	if maxRows < 1 {
		maxRows = 15
	}
	for i := m.offset; i < len(tb.Entries) && i < m.offset+maxRows; i++ {
		e := tb.Entries[i]
		name := e.AccountName
		if len(name) > 32 {
			name = name[:30] + ".."
		}
		b.WriteString(fmt.Sprintf("  %-8s %-34s %15s %15s\n", e.AccountCode, name, blankZero(e.Debit), blankZero(e.Credit)))
	}

	b.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("─", 75)))
	b.WriteString(fmt.Sprintf("  %-43s %15s %15s\n", "TOTALS",
		ledger.FormatAmount(tb.TotalDebit), ledger.FormatAmount(tb.TotalCredit)))

	b.WriteString("\n")
	if tb.Balanced {
		b.WriteString(successStyle.Render("  [BALANCED]"))
	} else {
		b.WriteString(errorStyle.Render("  [UNBALANCED! difference " + formatReportAmt(tb.Difference) + "]"))
	}
	return b.String()
}
