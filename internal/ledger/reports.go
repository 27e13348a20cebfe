package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type GeneralLedgerEntry struct {
	Date          time.Time       `json:"date"`
	JournalID     string          `json:"journal_id"`
	JournalNumber string          `json:"journal_number"`
	LineNumber    int             `json:"line_number"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

type GeneralLedger struct {
	AccountID      string               `json:"account_id"`
	AccountCode    string               `json:"account_code"`
	AccountName    string               `json:"account_name"`
	AccountType    AccountType          `json:"account_type"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        time.Time            `json:"end_date"`
	OpeningBalance decimal.Decimal      `json:"opening_balance"`
	Entries        []GeneralLedgerEntry `json:"entries"`
	TotalDebit     decimal.Decimal      `json:"total_debit"`
	TotalCredit    decimal.Decimal      `json:"total_credit"`
	ClosingBalance decimal.Decimal      `json:"closing_balance"`
}

// BuildGeneralLedger folds every line of acct dated before start into the opening
// balance, then emits one entry per line in [start, end] with the running balance
// after that line. Lines of other accounts and lines after end are ignored.
func BuildGeneralLedger(acct Account, start, end time.Time, lines []PostedLine) *GeneralLedger {
	start, end = Day(start), Day(end)
	own := filterLines(lines, func(l PostedLine) bool { return l.AccountID == acct.ID })
	SortPosted(own)

	gl := &GeneralLedger{
		AccountID:   acct.ID,
		AccountCode: acct.Code,
		AccountName: acct.Name,
		AccountType: acct.Type,
		StartDate:   start,
		EndDate:     end,
		Entries:     make([]GeneralLedgerEntry, 0),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	before := filterLines(own, func(l PostedLine) bool { return Day(l.Date).Before(start) })
	gl.OpeningBalance = Fold(decimal.Zero, before, acct.Type)

	window := DateRange{From: start, To: end}
	balance := gl.OpeningBalance
	for _, l := range own {
		if !window.Contains(l.Date) {
			continue
		}
		balance = Apply(balance, l.Side, l.Amount, acct.Type)

		desc := l.Description
		if desc == "" {
			desc = l.JournalDescription
		}
		gl.Entries = append(gl.Entries, GeneralLedgerEntry{
			Date:          l.Date,
			JournalID:     l.JournalID,
			JournalNumber: l.JournalNumber,
			LineNumber:    l.LineNumber,
			Description:   desc,
			Debit:         l.DebitAmount(),
			Credit:        l.CreditAmount(),
			Balance:       balance,
		})
		gl.TotalDebit = gl.TotalDebit.Add(l.DebitAmount())
		gl.TotalCredit = gl.TotalCredit.Add(l.CreditAmount())
	}
	gl.ClosingBalance = balance
	return gl
}

type TrialBalanceEntry struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	AccountType AccountType     `json:"account_type"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	// Balance is signed by the account's normal side.
	Balance decimal.Decimal `json:"balance"`
	Debit   decimal.Decimal `json:"debit_balance"`
	Credit  decimal.Decimal `json:"credit_balance"`
}

type TrialBalance struct {
	AsOfDate    time.Time           `json:"as_of_date"`
	Entries     []TrialBalanceEntry `json:"entries"`
	TotalDebit  decimal.Decimal     `json:"total_debit"`
	TotalCredit decimal.Decimal     `json:"total_credit"`
	Difference  decimal.Decimal     `json:"difference"`
	Balanced    bool                `json:"balanced"`
}

// BuildTrialBalance lists every account with a line dated on or before asOf. The
// column is picked by the sign of debits minus credits, not by account type, so an
// abnormal balance shows up on the unexpected side.
func BuildTrialBalance(asOf time.Time, lines []PostedLine) *TrialBalance {
	asOf = Day(asOf)
	upTo := DateRange{To: asOf}
	in := filterLines(lines, func(l PostedLine) bool { return upTo.Contains(l.Date) })

	tb := &TrialBalance{
		AsOfDate:    asOf,
		Entries:     make([]TrialBalanceEntry, 0),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, g := range groupByAccount(in) {
		e := TrialBalanceEntry{
			AccountID:   g.AccountID,
			AccountCode: g.AccountCode,
			AccountName: g.AccountName,
			AccountType: g.AccountType,
			TotalDebit:  decimal.Zero,
			TotalCredit: decimal.Zero,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			Balance:     Fold(decimal.Zero, g.Lines, g.AccountType),
		}
		for _, l := range g.Lines {
			e.TotalDebit = e.TotalDebit.Add(l.DebitAmount())
			e.TotalCredit = e.TotalCredit.Add(l.CreditAmount())
		}

		net := e.TotalDebit.Sub(e.TotalCredit)
		switch {
		case net.IsPositive():
			e.Debit = net
		case net.IsNegative():
			e.Credit = net.Neg()
		}
		tb.TotalDebit = tb.TotalDebit.Add(e.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(e.Credit)
		tb.Entries = append(tb.Entries, e)
	}
	tb.Difference = tb.TotalDebit.Sub(tb.TotalCredit)
	tb.Balanced = tb.Difference.IsZero()
	return tb
}

// AccountAmount is one account's contribution to a report section.
type AccountAmount struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type ProfitLoss struct {
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Revenue         decimal.Decimal `json:"revenue"`
	Expense         decimal.Decimal `json:"expense"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	RevenueAccounts []AccountAmount `json:"revenue_accounts"`
	ExpenseAccounts []AccountAmount `json:"expense_accounts"`
}

// BuildProfitLoss sums revenue (credit − debit) and expense (debit − credit) lines in [start, end].
func BuildProfitLoss(start, end time.Time, lines []PostedLine) *ProfitLoss {
	start, end = Day(start), Day(end)
	window := DateRange{From: start, To: end}
	in := filterLines(lines, func(l PostedLine) bool { return window.Contains(l.Date) })

	pl := &ProfitLoss{StartDate: start, EndDate: end}
	pl.Revenue, pl.RevenueAccounts = sumSection(in, AccountTypeRevenue)
	pl.Expense, pl.ExpenseAccounts = sumSection(in, AccountTypeExpense)
	pl.NetProfit = pl.Revenue.Sub(pl.Expense)
	return pl
}

type BalanceSheet struct {
	AsOfDate                  time.Time       `json:"as_of_date"`
	NetProfitFrom             time.Time       `json:"net_profit_from"`
	Assets                    decimal.Decimal `json:"assets"`
	Liabilities               decimal.Decimal `json:"liabilities"`
	Equity                    decimal.Decimal `json:"equity"`
	NetProfit                 decimal.Decimal `json:"net_profit"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	// Difference is assets minus TotalLiabilitiesAndEquity. It is reported, never corrected.
	Difference        decimal.Decimal `json:"difference"`
	AssetAccounts     []AccountAmount `json:"asset_accounts"`
	LiabilityAccounts []AccountAmount `json:"liability_accounts"`
	EquityAccounts    []AccountAmount `json:"equity_accounts"`
}

// NetProfitStart picks where the balance sheet's net profit window begins: the
// start of the period containing asOf, or 1 January of asOf's year when there is none.
func NetProfitStart(asOf time.Time, containing *FiscalPeriod) time.Time {
	if containing != nil {
		return Day(containing.StartDate)
	}
	return Date(asOf.Year(), time.January, 1)
}

// BuildBalanceSheet folds every asset, liability and equity line dated on or before
// asOf, and adds the net profit from NetProfitStart through asOf.
func BuildBalanceSheet(asOf time.Time, containing *FiscalPeriod, lines []PostedLine) *BalanceSheet {
	asOf = Day(asOf)
	upTo := DateRange{To: asOf}
	in := filterLines(lines, func(l PostedLine) bool { return upTo.Contains(l.Date) })

	bs := &BalanceSheet{AsOfDate: asOf, NetProfitFrom: NetProfitStart(asOf, containing)}
	bs.Assets, bs.AssetAccounts = sumSection(in, AccountTypeAsset)
	bs.Liabilities, bs.LiabilityAccounts = sumSection(in, AccountTypeLiability)
	bs.Equity, bs.EquityAccounts = sumSection(in, AccountTypeEquity)

	bs.NetProfit = BuildProfitLoss(bs.NetProfitFrom, asOf, lines).NetProfit
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Add(bs.Equity).Add(bs.NetProfit)
	bs.Difference = bs.Assets.Sub(bs.TotalLiabilitiesAndEquity)
	return bs
}

func sumSection(lines []PostedLine, t AccountType) (decimal.Decimal, []AccountAmount) {
	of := filterLines(lines, func(l PostedLine) bool { return l.AccountType == t })

	total := decimal.Zero
	rows := make([]AccountAmount, 0)
	for _, g := range groupByAccount(of) {
		amt := Fold(decimal.Zero, g.Lines, t)
		total = total.Add(amt)
		rows = append(rows, AccountAmount{
			AccountID:   g.AccountID,
			AccountCode: g.AccountCode,
			AccountName: g.AccountName,
			Amount:      amt,
		})
	}
	return total, rows
}
