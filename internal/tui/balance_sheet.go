package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type balanceSheetLoadedMsg struct {
	bs  *ledger.BalanceSheet
	err error
}

type balanceSheetModel struct {
	bs      *ledger.BalanceSheet
	loading bool
	err     error
	width   int
	height  int
}

func (m *balanceSheetModel) init(s *session) tea.Cmd {
	m.loading = true
	asOf := s.asOf
	return func() tea.Msg {
		bs, err := s.client.BalanceSheet(context.Background(), s.company, asOf)
		return balanceSheetLoadedMsg{bs: bs, err: err}
	}
}

func (m balanceSheetModel) update(msg tea.Msg) (balanceSheetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceSheetLoadedMsg:
		m.loading = false
		m.bs = msg.bs
		m.err = msg.err
	}
	return m, nil
}

func (m *balanceSheetModel) view() string {
	if m.loading {
		return "Loading balance sheet..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.bs == nil {
		return dimStyle.Render("No data available.")
	}

	var b strings.Builder
	w := reportWidth(m.width)
	nameW := w - 30
	bs := m.bs

	b.WriteString(titleStyle.Render(centerStr("BALANCE SHEET", w)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(centerStr("as of "+ledger.FormatDate(bs.AsOfDate), w)))
	b.WriteString("\n\n")

	renderSection(&b, "Assets", bs.AssetAccounts, bs.Assets, nameW, w)
	renderSection(&b, "Liabilities", bs.LiabilityAccounts, bs.Liabilities, nameW, w)
	renderSection(&b, "Equity", bs.EquityAccounts, bs.Equity, nameW, w)

	b.WriteString(fmt.Sprintf("    %-*s %14s\n", nameW+7,
		"Net profit since "+ledger.FormatDate(bs.NetProfitFrom), formatReportAmt(bs.NetProfit)))
	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("═", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %14s\n", nameW+7, "Total L + E", formatReportAmt(bs.TotalLiabilitiesAndEquity)))

	b.WriteString("\n")
	if bs.Difference.IsZero() {
		b.WriteString(successStyle.Render("    [BALANCED]"))
	} else {
		b.WriteString(errorStyle.Render("    [UNBALANCED! difference " + formatReportAmt(bs.Difference) + "]"))
	}

	return b.String()
}

// renderSection writes one titled block of account rows followed by its total.
func renderSection(b *strings.Builder, title string, rows []ledger.AccountAmount, total decimal.Decimal, nameW, w int) {
	b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render(title)))
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("    (no entries)") + "\n\n")
		return
	}
	for _, r := range rows {
		name := r.AccountName
		if len(name) > nameW-2 {
			name = name[:nameW-2] + ".."
		}
		b.WriteString(fmt.Sprintf("    %-6s %-*s %14s\n", r.AccountCode, nameW, name, formatReportAmt(r.Amount)))
	}
	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("─", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %14s\n", nameW+7, "Total "+title, formatReportAmt(total)))
	b.WriteString("\n")
}

func reportWidth(w int) int {
	if w < 60 {
		return 80
	}
	if w > 100 {
		return 100
	}
	return w
}

func formatReportAmt(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "(" + ledger.FormatAmount(amount.Neg()) + ")"
	}
	return ledger.FormatAmount(amount)
}

func blankZero(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return ledger.FormatAmount(amount)
}

func centerStr(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
