package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type profitLossLoadedMsg struct {
	pl  *ledger.ProfitLoss
	err error
}

type profitLossModel struct {
	pl      *ledger.ProfitLoss
	loading bool
	err     error
	width   int
}

func (m *profitLossModel) init(s *session) tea.Cmd {
	m.loading = true
	from, to := s.from(), s.asOf
	return func() tea.Msg {
		pl, err := s.client.ProfitLoss(context.Background(), s.company, from, to)
		return profitLossLoadedMsg{pl: pl, err: err}
	}
}

func (m profitLossModel) update(msg tea.Msg) (profitLossModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profitLossLoadedMsg:
		m.loading = false
		m.pl = msg.pl
		m.err = msg.err
	}
	return m, nil
}

func (m *profitLossModel) view() string {
	if m.loading {
		return "Loading profit and loss..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.pl == nil {
		return dimStyle.Render("No data available.")
	}

	var b strings.Builder
	w := reportWidth(m.width)
	nameW := w - 30
	pl := m.pl

	b.WriteString(titleStyle.Render(centerStr("PROFIT AND LOSS", w)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(centerStr(ledger.FormatDate(pl.StartDate)+" to "+ledger.FormatDate(pl.EndDate), w)))
	b.WriteString("\n\n")

	renderSection(&b, "Revenue", pl.RevenueAccounts, pl.Revenue, nameW, w)
	renderSection(&b, "Expenses", pl.ExpenseAccounts, pl.Expense, nameW, w)

	label := "Net Profit"
	style := successStyle
	if pl.NetProfit.IsNegative() {
		label = "Net Loss"
		style = errorStyle
	}
	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("═", w-8)))
	b.WriteString(style.Render(fmt.Sprintf("    %-*s %14s", nameW+7, label, formatReportAmt(pl.NetProfit))))

	return b.String()
}
