package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

type mode int

const (
	modeAccountList mode = iota
	modeAccountLedger
	modeJournalList
	modeJournalDetail
	modeTrialBalance
	modeProfitLoss
	modeBalanceSheet
	modePeriods
)

var tabModes = []mode{modeAccountList, modeJournalList, modeTrialBalance, modeProfitLoss, modeBalanceSheet, modePeriods}

func tabLabel(m mode) string {
	switch m {
	case modeAccountList:
		return "Accounts"
	case modeJournalList:
		return "Journals"
	case modeTrialBalance:
		return "Trial Balance"
	case modeProfitLoss:
		return "Profit & Loss"
	case modeBalanceSheet:
		return "Balance Sheet"
	case modePeriods:
		return "Periods"
	default:
		return ""
	}
}

// session is what every view reads from: the API, the selected company and
// the report date.
type session struct {
	client  *client.Client
	company string
	asOf    time.Time
}

// from is the start of the reporting window ending at asOf.
func (s *session) from() time.Time {
	return ledger.NetProfitStart(s.asOf, nil)
}

// previousMonthEnd returns the last day of the month before t's month.
func previousMonthEnd(t time.Time) time.Time {
	return ledger.Date(t.Year(), t.Month(), 1).AddDate(0, 0, -1)
}

// nextMonthEnd returns the last day of the month after t's month.
func nextMonthEnd(t time.Time) time.Time {
	return ledger.Date(t.Year(), t.Month()+2, 1).AddDate(0, 0, -1)
}

type companyLoadedMsg struct {
	company *ledger.Company
	err     error
}

type App struct {
	session       *session
	companyName   string
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string

	accountList   accountListModel
	accountLedger accountLedgerModel
	journalList   journalListModel
	journalDetail journalDetailModel
	trialBalance  trialBalanceModel
	profitLoss    profitLossModel
	balanceSheet  balanceSheetModel
	periods       periodListModel
}

// NewApp browses the books of company (id or code) as of asOf.
func NewApp(c *client.Client, company string, asOf time.Time) *App {
	return &App{
		session: &session{client: c, company: company, asOf: ledger.Day(asOf)},
		mode:    modeAccountList,
	}
}

func (a *App) Init() tea.Cmd {
	s := a.session
	return tea.Batch(
		func() tea.Msg {
			c, err := s.client.GetCompany(context.Background(), s.company)
			return companyLoadedMsg{company: c, err: err}
		},
		a.accountList.init(s),
		a.journalList.init(s),
		a.periods.init(s),
		a.refreshReports(),
	)
}

func (a *App) refreshReports() tea.Cmd {
	return tea.Batch(
		a.trialBalance.init(a.session),
		a.profitLoss.init(a.session),
		a.balanceSheet.init(a.session),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.accountList.width = msg.Width
		a.accountList.height = msg.Height - 6
		a.journalList.width = msg.Width
		a.journalList.height = msg.Height - 6
		a.accountLedger.width = msg.Width
		a.accountLedger.height = msg.Height - 6
		a.journalDetail.width = msg.Width
		a.trialBalance.width = msg.Width
		a.trialBalance.height = msg.Height - 6
		a.profitLoss.width = msg.Width
		a.balanceSheet.width = msg.Width
		a.balanceSheet.height = msg.Height - 6
		a.periods.width = msg.Width
		a.periods.height = msg.Height - 6
		return a, nil
	}

	// Loads run concurrently, so route results to their model whatever the active mode.
	switch typedMsg := msg.(type) {
	case companyLoadedMsg:
		if typedMsg.err != nil {
			a.err = typedMsg.err
			return a, nil
		}
		a.companyName = typedMsg.company.Code + " " + typedMsg.company.Name
		return a, nil
	case accountsLoadedMsg:
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg)
		return a, cmd
	case accountLedgerLoadedMsg:
		var cmd tea.Cmd
		a.accountLedger, cmd = a.accountLedger.update(msg)
		return a, cmd
	case journalsLoadedMsg:
		var cmd tea.Cmd
		a.journalList, cmd = a.journalList.update(msg)
		return a, cmd
	case journalDetailLoadedMsg:
		var cmd tea.Cmd
		a.journalDetail, cmd = a.journalDetail.update(msg)
		return a, cmd
	case trialBalanceLoadedMsg:
		var cmd tea.Cmd
		a.trialBalance, cmd = a.trialBalance.update(msg)
		return a, cmd
	case profitLossLoadedMsg:
		var cmd tea.Cmd
		a.profitLoss, cmd = a.profitLoss.update(msg)
		return a, cmd
	case balanceSheetLoadedMsg:
		var cmd tea.Cmd
		a.balanceSheet, cmd = a.balanceSheet.update(msg)
		return a, cmd
	case periodsLoadedMsg:
		var cmd tea.Cmd
		a.periods, cmd = a.periods.update(msg)
		return a, cmd
	case accountDeleteConfirmedMsg:
		s, id := a.session, typedMsg.id
		return a, func() tea.Msg {
			err := s.client.DeleteAccount(context.Background(), s.company, id)
			return accountDeletedMsg{id: id, err: err}
		}
	case accountDeletedMsg:
		a.accountList, _ = a.accountList.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = "Account deleted"
		return a, a.accountList.init(a.session)
	case accountRenameRequestMsg:
		s, id, name := a.session, typedMsg.id, typedMsg.name
		return a, func() tea.Msg {
			_, err := s.client.UpdateAccount(context.Background(), s.company, id, name, "")
			return accountRenamedMsg{id: id, err: err}
		}
	case accountRenamedMsg:
		a.accountList, _ = a.accountList.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = "Account renamed"
		return a, tea.Batch(a.accountList.init(a.session), a.refreshReports())
	case periodChangedMsg:
		if typedMsg.err != nil {
			a.periods, _ = a.periods.update(msg)
			return a, nil
		}
		a.statusMsg = "Period " + typedMsg.period.Name + " " + periodStatus(typedMsg.period)
		return a, a.periods.init(a.session)
	}

	// Inline input on the account list takes every key.
	if a.mode == modeAccountList && (a.accountList.renaming || a.accountList.confirmDelete) {
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeAccountLedger:
				a.mode = modeAccountList
			case modeJournalDetail:
				a.mode = modeJournalList
			}
			return a, nil

		case key.Matches(msg, keys.PrevMonth):
			return a, a.setAsOf(previousMonthEnd(a.session.asOf))
		case key.Matches(msg, keys.NextMonth):
			return a, a.setAsOf(nextMonthEnd(a.session.asOf))
		case key.Matches(msg, keys.Today):
			return a, a.setAsOf(ledger.Day(time.Now()))

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshTab()

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeAccountList:
				if acct := a.accountList.selected(); acct != nil {
					a.mode = modeAccountLedger
					return a, a.accountLedger.init(a.session, acct.ID)
				}
				return a, nil
			case modeJournalList:
				if id := a.journalList.selectedID(); id != "" {
					a.mode = modeJournalDetail
					return a, a.journalDetail.init(a.session, id)
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.mode {
	case modeAccountList:
		a.accountList, cmd = a.accountList.update(msg)
	case modeAccountLedger:
		a.accountLedger, cmd = a.accountLedger.update(msg)
	case modeJournalList:
		a.journalList, cmd = a.journalList.update(msg)
	case modeJournalDetail:
		a.journalDetail, cmd = a.journalDetail.update(msg)
	case modeTrialBalance:
		a.trialBalance, cmd = a.trialBalance.update(msg)
	case modeProfitLoss:
		a.profitLoss, cmd = a.profitLoss.update(msg)
	case modeBalanceSheet:
		a.balanceSheet, cmd = a.balanceSheet.update(msg)
	case modePeriods:
		a.periods, cmd = a.periods.update(msg)
	}
	return a, cmd
}

func (a *App) setAsOf(d time.Time) tea.Cmd {
	a.session.asOf = d
	a.statusMsg = "As of " + ledger.FormatDate(d)
	cmds := []tea.Cmd{a.journalList.init(a.session), a.refreshReports()}
	if a.mode == modeAccountLedger && a.accountLedger.accountID != "" {
		cmds = append(cmds, a.accountLedger.init(a.session, a.accountLedger.accountID))
	}
	return tea.Batch(cmds...)
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeAccountList:
		return a.accountList.init(a.session)
	case modeJournalList:
		return a.journalList.init(a.session)
	case modeTrialBalance:
		return a.trialBalance.init(a.session)
	case modeProfitLoss:
		return a.profitLoss.init(a.session)
	case modeBalanceSheet:
		return a.balanceSheet.init(a.session)
	case modePeriods:
		return a.periods.init(a.session)
	}
	return nil
}

func (a *App) View() string {
	tabs := companyStyle.Render(a.companyName) + " "
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}
	tabs += "  " + subtitleStyle.Render("as of "+ledger.FormatDate(a.session.asOf))

	var content string
	switch a.mode {
	case modeAccountList:
		content = a.accountList.view()
	case modeAccountLedger:
		content = a.accountLedger.view()
	case modeJournalList:
		content = a.journalList.view()
	case modeJournalDetail:
		content = a.journalDetail.view()
	case modeTrialBalance:
		content = a.trialBalance.view()
	case modeProfitLoss:
		content = a.profitLoss.view()
	case modeBalanceSheet:
		content = a.balanceSheet.view()
	case modePeriods:
		content = a.periods.view()
	}

	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	helpText := dimStyle.Render("tab:switch  enter:select  esc:back  [ ]:month  .:today  r:refresh  d:delete  e:rename  c/o:close/reopen  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		status,
		helpText,
	)
}
