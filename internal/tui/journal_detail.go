package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type journalDetailLoadedMsg struct {
	journal *ledger.Journal
	err     error
}

type journalDetailModel struct {
	journal *ledger.Journal
	loading bool
	err     error
	width   int
}

func (m *journalDetailModel) init(s *session, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		j, err := s.client.GetJournal(context.Background(), s.company, id)
		return journalDetailLoadedMsg{journal: j, err: err}
	}
}

func (m journalDetailModel) update(msg tea.Msg) (journalDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case journalDetailLoadedMsg:
		m.loading = false
		m.journal = msg.journal
		m.err = msg.err
	}
	return m, nil
}

func (m *journalDetailModel) view() string {
	if m.loading {
		return "Loading journal..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.journal == nil {
		return ""
	}

	var b strings.Builder
	j := m.journal

	b.WriteString(titleStyle.Render(fmt.Sprintf("Journal: %s", j.Number)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), ledger.FormatDate(j.Date)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), j.Description))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("ID:"), j.ID))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-3s %-8s %15s %15s %12s  %s", "#", "ACCOUNT", "DEBIT", "CREDIT", "TAX", "DESCRIPTION")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, l := range j.Lines {
		debit, credit := "", ""
		if l.Side == ledger.Debit {
			debit = ledger.FormatAmount(l.Amount)
		} else {
			credit = ledger.FormatAmount(l.Amount)
		}
		tax := ""
		if l.TaxAmount.Valid {
			tax = ledger.FormatAmount(l.TaxAmount.Decimal)
		}

		line := fmt.Sprintf("  %-3d %-8s %15s %15s %12s  %s", l.LineNumber, l.AccountCode, debit, credit, tax, l.Description)
		if l.Side == ledger.Debit {
			b.WriteString(debitStyle.Render(line))
		} else {
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}

	debit, credit := ledger.Totals(j.Lines)
	b.WriteString(fmt.Sprintf("  %-12s %15s %15s\n", "TOTAL", ledger.FormatAmount(debit), ledger.FormatAmount(credit)))

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
