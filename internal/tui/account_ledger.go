package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type accountLedgerLoadedMsg struct {
	gl  *ledger.GeneralLedger
	err error
}

// accountLedgerModel shows the general ledger of one account for the
// session's reporting window.
type accountLedgerModel struct {
	accountID string
	gl        *ledger.GeneralLedger
	offset    int
	loading   bool
	err       error
	width     int
	height    int
}

func (m *accountLedgerModel) init(s *session, accountID string) tea.Cmd {
	m.accountID = accountID
	m.loading = true
	m.offset = 0
	from, to := s.from(), s.asOf
	return func() tea.Msg {
		gl, err := s.client.GeneralLedger(context.Background(), s.company, accountID, from, to)
		return accountLedgerLoadedMsg{gl: gl, err: err}
	}
}

func (m accountLedgerModel) update(msg tea.Msg) (accountLedgerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountLedgerLoadedMsg:
		m.loading = false
		m.gl = msg.gl
		m.err = msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, keys.Down):
			if m.gl != nil && m.offset < len(m.gl.Entries)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m *accountLedgerModel) view() string {
	if m.loading {
		return "Loading general ledger..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.gl == nil {
		return ""
	}

	var b strings.Builder
	gl := m.gl

	b.WriteString(titleStyle.Render(fmt.Sprintf("General Ledger: %s %s", gl.AccountCode, gl.AccountName)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), gl.AccountType.Label()))
	b.WriteString(fmt.Sprintf("%s %s to %s\n", labelStyle.Render("Period:"),
		ledger.FormatDate(gl.StartDate), ledger.FormatDate(gl.EndDate)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Opening:"), formatReportAmt(gl.OpeningBalance)))
	b.WriteString("\n")

	if len(gl.Entries) == 0 {
		b.WriteString(dimStyle.Render("  No entries in this window."))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("  %-10s %-12s %-28s %13s %13s %14s", "DATE", "JOURNAL", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")

		maxRows := m.height - 10
		if maxRows < 1 {
			maxRows = 10
		}
		for i := m.offset; i < len(gl.Entries) && i < m.offset+maxRows; i++ {
			e := gl.Entries[i]
			desc := e.Description
			if len(desc) > 28 {
				desc = desc[:26] + ".."
			}
			line := fmt.Sprintf("  %-10s %-12s %-28s %13s %13s %14s",
				ledger.FormatDate(e.Date), e.JournalNumber, desc,
				blankZero(e.Debit), blankZero(e.Credit), formatReportAmt(e.Balance))
			if e.Debit.IsPositive() {
				b.WriteString(debitStyle.Render(line))
			} else {
				b.WriteString(creditStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Debits:"), ledger.FormatAmount(gl.TotalDebit)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Credits:"), ledger.FormatAmount(gl.TotalCredit)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Closing:"), formatReportAmt(gl.ClosingBalance)))

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
