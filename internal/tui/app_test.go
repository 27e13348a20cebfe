package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

func TestMonthShifting(t *testing.T) {
	assert.Equal(t, ledger.Date(2025, 2, 28), previousMonthEnd(ledger.Date(2025, 3, 15)))
	assert.Equal(t, ledger.Date(2024, 12, 31), previousMonthEnd(ledger.Date(2025, 1, 31)))
	assert.Equal(t, ledger.Date(2025, 2, 28), nextMonthEnd(ledger.Date(2025, 1, 31)))
	assert.Equal(t, ledger.Date(2026, 1, 31), nextMonthEnd(ledger.Date(2025, 12, 1)))
}

func newTestApp() *App {
	return NewApp(client.New("http://127.0.0.1:0"), "ACME", ledger.Date(2025, 1, 31))
}

func TestTabCycling(t *testing.T) {
	app := newTestApp()

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeJournalList, app.mode)

	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, modePeriods, app.mode)
}

func TestMonthKeysMoveReportDate(t *testing.T) {
	app := newTestApp()

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	assert.Equal(t, ledger.Date(2024, 12, 31), app.session.asOf)
	assert.Equal(t, ledger.Date(2024, 1, 1), app.session.from())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, ledger.Date(2025, 1, 31), app.session.asOf)
}

func TestLoadedMessagesRouteToModels(t *testing.T) {
	app := newTestApp()
	app.trialBalance.loading = true

	tb := &ledger.TrialBalance{
		AsOfDate: ledger.Date(2025, 1, 31),
		Entries: []ledger.TrialBalanceEntry{
			{AccountCode: "1000", AccountName: "Cash", Debit: decimal.NewFromInt(1000), Credit: decimal.Zero},
			{AccountCode: "3000", AccountName: "Capital Stock", Debit: decimal.Zero, Credit: decimal.NewFromInt(1000)},
		},
		TotalDebit:  decimal.NewFromInt(1000),
		TotalCredit: decimal.NewFromInt(1000),
		Balanced:    true,
	}
	app.Update(trialBalanceLoadedMsg{tb: tb})
	require.False(t, app.trialBalance.loading)

	view := app.trialBalance.view()
	assert.Contains(t, view, "TRIAL BALANCE")
	assert.Contains(t, view, "1,000.00")
	assert.Contains(t, view, "[BALANCED]")
}

func TestAccountDeleteConfirmation(t *testing.T) {
	app := newTestApp()
	app.Update(accountsLoadedMsg{accounts: []ledger.Account{
		{ID: "a1", Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset},
	}})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.True(t, app.accountList.confirmDelete)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.Equal(t, accountDeleteConfirmedMsg{id: "a1"}, cmd())
	assert.False(t, app.accountList.confirmDelete)
}

func TestPeriodChangeErrorShown(t *testing.T) {
	app := newTestApp()
	app.Update(periodsLoadedMsg{periods: []ledger.FiscalPeriod{
		{ID: "p1", Year: 2025, Number: 1, Name: "2025-01",
			StartDate: ledger.Date(2025, 1, 1), EndDate: ledger.Date(2025, 1, 31), Closed: true},
	}})

	app.Update(periodChangedMsg{err: errors.New("server error (409): fiscal period already closed")})
	view := app.periods.view()
	assert.Contains(t, view, "already closed")
	assert.Contains(t, view, "2025-01")
}

func TestBalanceSheetView(t *testing.T) {
	m := balanceSheetModel{bs: &ledger.BalanceSheet{
		AsOfDate:      ledger.Date(2025, 1, 31),
		NetProfitFrom: ledger.Date(2025, 1, 1),
		Assets:        decimal.NewFromInt(500),
		AssetAccounts: []ledger.AccountAmount{
			{AccountCode: "1000", AccountName: "Cash", Amount: decimal.NewFromInt(500)},
		},
		Equity:                    decimal.NewFromInt(400),
		NetProfit:                 decimal.NewFromInt(50),
		TotalLiabilitiesAndEquity: decimal.NewFromInt(450),
		Difference:                decimal.NewFromInt(50),
	}}

	view := m.view()
	assert.Contains(t, view, "BALANCE SHEET")
	assert.Contains(t, view, "(no entries)")
	assert.Contains(t, view, "UNBALANCED")
	assert.Contains(t, view, "50.00")
}
