package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	d, err := ledger.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	s       *Store
	company *ledger.Company
	period  *ledger.FiscalPeriod
	cash    *ledger.Account
	capital *ledger.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := openTestStore(t)

	c := &ledger.Company{Code: "ACME", Name: "Acme Ltd"}
	require.NoError(t, s.CreateCompany(ctx, c, true))

	p := &ledger.FiscalPeriod{
		CompanyID: c.ID, Year: 2025, Number: 1, Name: "2025-01",
		StartDate: day("2025-01-01"), EndDate: day("2025-01-31"),
	}
	require.NoError(t, s.CreatePeriod(ctx, p))

	cash, err := s.GetAccountByCode(ctx, c.ID, "1000")
	require.NoError(t, err)
	capital, err := s.GetAccountByCode(ctx, c.ID, "3000")
	require.NoError(t, err)

	return &fixture{s: s, company: c, period: p, cash: cash, capital: capital}
}

func (f *fixture) journal(number, on, amount string) *ledger.Journal {
	amt := decimal.RequireFromString(amount)
	return &ledger.Journal{
		CompanyID:      f.company.ID,
		FiscalPeriodID: f.period.ID,
		Number:         number,
		Date:           day(on),
		Description:    "capital injection",
		Lines: []ledger.JournalLine{
			{LineNumber: 1, Side: ledger.Debit, AccountID: f.cash.ID, Amount: amt},
			{LineNumber: 2, Side: ledger.Credit, AccountID: f.capital.ID, Amount: amt},
		},
	}
}

func TestCreateCompanySeedsChart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	accounts, err := f.s.ListAccounts(ctx, f.company.ID, AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart))
	assert.Equal(t, "1000", accounts[0].Code)
	assert.True(t, accounts[0].IsSystem)

	err = f.s.CreateCompany(ctx, &ledger.Company{Code: "ACME", Name: "Other"}, false)
	assert.ErrorIs(t, err, ledger.ErrDuplicateCompany)
}

func TestAccountsAreScopedToCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &ledger.Company{Code: "OTHER", Name: "Other"}
	require.NoError(t, f.s.CreateCompany(ctx, other, false))

	_, err := f.s.GetAccount(ctx, other.ID, f.cash.ID)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	dup := &ledger.Account{CompanyID: f.company.ID, Code: "1000", Name: "Cash 2", Type: ledger.AccountTypeAsset}
	assert.ErrorIs(t, f.s.CreateAccount(ctx, dup), ledger.ErrDuplicateAccount)

	// Same code in another company is fine.
	own := &ledger.Account{CompanyID: other.ID, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset}
	assert.NoError(t, f.s.CreateAccount(ctx, own))
}

func TestUpdateSystemAccountType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	upd := *f.cash
	upd.Type = ledger.AccountTypeExpense
	assert.ErrorIs(t, f.s.UpdateAccount(ctx, &upd), ledger.ErrSystemAccountType)

	upd = *f.cash
	upd.Name = "Petty Cash"
	require.NoError(t, f.s.UpdateAccount(ctx, &upd))
	got, err := f.s.GetAccount(ctx, f.company.ID, f.cash.ID)
	require.NoError(t, err)
	assert.Equal(t, "Petty Cash", got.Name)
}

func TestCreateJournalRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	j := f.journal("J-1", "2025-01-10", "1000.00")
	j.Lines[0].TaxAmount = decimal.NewNullDecimal(decimal.RequireFromString("12.34"))
	require.NoError(t, f.s.CreateJournal(ctx, j))

	got, err := f.s.GetJournal(ctx, f.company.ID, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "J-1", got.Number)
	assert.Equal(t, "2025-01-10", ledger.FormatDate(got.Date))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "1000.00", got.Lines[0].Amount.StringFixed(2))
	assert.True(t, got.Lines[0].TaxAmount.Valid)
	assert.Equal(t, "12.34", got.Lines[0].TaxAmount.Decimal.StringFixed(2))
	assert.False(t, got.Lines[1].TaxAmount.Valid)

	err = f.s.CreateJournal(ctx, f.journal("J-1", "2025-01-11", "5"))
	assert.ErrorIs(t, err, ledger.ErrDuplicateJournalNumber)
}

func TestUnbalancedJournalRejectedByTrigger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	j := f.journal("J-1", "2025-01-10", "500")
	j.Lines[1].Amount = decimal.NewFromInt(400)
	err := f.s.CreateJournal(ctx, j)
	assert.ErrorIs(t, err, ledger.ErrUnbalancedJournal)

	journals, err := f.s.ListJournals(ctx, f.company.ID, JournalFilter{})
	require.NoError(t, err)
	assert.Empty(t, journals, "nothing persisted")

	lines, err := f.s.LinesForCompany(ctx, f.company.ID, ledger.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestClosedPeriodTriggers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	j := f.journal("J-1", "2025-01-10", "100")
	require.NoError(t, f.s.CreateJournal(ctx, j))
	require.NoError(t, f.s.SetPeriodClosed(ctx, f.company.ID, f.period.ID, true))

	assert.ErrorIs(t, f.s.CreateJournal(ctx, f.journal("J-2", "2025-01-11", "5")), ledger.ErrPeriodClosed)
	assert.ErrorIs(t, f.s.DeleteJournal(ctx, f.company.ID, j.ID), ledger.ErrPeriodClosed)

	j.Description = "edited"
	assert.ErrorIs(t, f.s.ReplaceJournal(ctx, j), ledger.ErrPeriodClosed)

	p := *f.period
	p.Name = "renamed"
	assert.ErrorIs(t, f.s.UpdatePeriod(ctx, &p), ledger.ErrPeriodClosed)

	require.NoError(t, f.s.SetPeriodClosed(ctx, f.company.ID, f.period.ID, false))
	assert.NoError(t, f.s.DeleteJournal(ctx, f.company.ID, j.ID))
}

func TestJournalDateMustMatchPeriod(t *testing.T) {
	f := newFixture(t)
	err := f.s.CreateJournal(context.Background(), f.journal("J-1", "2025-02-10", "100"))
	assert.ErrorIs(t, err, ledger.ErrNoFiscalPeriod)
}

func TestReplaceJournalKeepsSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.journal("J-1", "2025-01-10", "100")
	second := f.journal("J-2", "2025-01-10", "200")
	require.NoError(t, f.s.CreateJournal(ctx, first))
	require.NoError(t, f.s.CreateJournal(ctx, second))

	first.Lines[0].Amount = decimal.NewFromInt(150)
	first.Lines[1].Amount = decimal.NewFromInt(150)
	require.NoError(t, f.s.ReplaceJournal(ctx, first))

	lines, err := f.s.LinesForAccount(ctx, f.company.ID, f.cash.ID, ledger.DateRange{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "J-1", lines[0].JournalNumber)
	assert.Equal(t, "150.00", lines[0].Amount.StringFixed(2))
	assert.Equal(t, "J-2", lines[1].JournalNumber)

	// A replacement that does not balance leaves the old lines in place.
	first.Lines[1].Amount = decimal.NewFromInt(1)
	assert.ErrorIs(t, f.s.ReplaceJournal(ctx, first), ledger.ErrUnbalancedJournal)
	got, err := f.s.GetJournal(ctx, f.company.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", got.Lines[1].Amount.StringFixed(2))
}

func TestPeriodQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.s.PeriodContaining(ctx, f.company.ID, day("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, f.period.ID, p.ID)

	_, err = f.s.PeriodContaining(ctx, f.company.ID, day("2025-02-01"))
	assert.ErrorIs(t, err, ledger.ErrNoFiscalPeriod)

	over, err := f.s.OverlappingPeriods(ctx, f.company.ID, ledger.DateRange{
		From: day("2025-01-31"), To: day("2025-03-01"),
	})
	require.NoError(t, err)
	assert.Len(t, over, 1)

	over, err = f.s.OverlappingPeriods(ctx, f.company.ID, ledger.DateRange{
		From: day("2025-02-01"), To: day("2025-02-28"),
	})
	require.NoError(t, err)
	assert.Empty(t, over)
}

func TestDeletePeriodInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.s.CreateJournal(ctx, f.journal("J-1", "2025-01-10", "100")))
	assert.ErrorIs(t, f.s.DeletePeriod(ctx, f.company.ID, f.period.ID), ledger.ErrPeriodInUse)
}

func TestTaxTypesEffectiveOn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	end := day("2025-06-30")
	old := &ledger.TaxType{CompanyID: f.company.ID, Code: "VAT8", Name: "VAT 8%",
		Rate: decimal.NewFromInt(8), EffectiveFrom: day("2025-01-01"), EffectiveTo: &end}
	cur := &ledger.TaxType{CompanyID: f.company.ID, Code: "VAT10", Name: "VAT 10%",
		Rate: decimal.RequireFromString("10.5"), EffectiveFrom: day("2025-07-01")}
	require.NoError(t, f.s.CreateTaxType(ctx, old))
	require.NoError(t, f.s.CreateTaxType(ctx, cur))

	got, err := f.s.ListTaxTypes(ctx, f.company.ID, day("2025-08-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "VAT10", got[0].Code)
	assert.Equal(t, "10.5", got[0].Rate.String())
	assert.Nil(t, got[0].EffectiveTo)

	all, err := f.s.ListTaxTypes(ctx, f.company.ID, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	dup := &ledger.TaxType{CompanyID: f.company.ID, Code: "VAT8", Name: "again",
		Rate: decimal.NewFromInt(8), EffectiveFrom: day("2025-01-01")}
	assert.ErrorIs(t, f.s.CreateTaxType(ctx, dup), ledger.ErrDuplicateCode)
}

func TestLinesForCompanyOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.s.CreateJournal(ctx, f.journal("J-B", "2025-01-20", "1")))
	require.NoError(t, f.s.CreateJournal(ctx, f.journal("J-A", "2025-01-05", "2")))
	require.NoError(t, f.s.CreateJournal(ctx, f.journal("J-C", "2025-01-20", "3")))

	lines, err := f.s.LinesForCompany(ctx, f.company.ID, ledger.DateRange{})
	require.NoError(t, err)
	require.Len(t, lines, 6)

	var order []string
	for _, l := range lines {
		order = append(order, l.JournalNumber)
	}
	assert.Equal(t, []string{"J-A", "J-A", "J-B", "J-B", "J-C", "J-C"}, order)
	assert.Equal(t, ledger.AccountTypeAsset, lines[0].AccountType)
	assert.Equal(t, "capital injection", lines[0].JournalDescription)

	windowed, err := f.s.LinesForCompany(ctx, f.company.ID, ledger.DateRange{To: day("2025-01-10")})
	require.NoError(t, err)
	assert.Len(t, windowed, 2)
}

func TestPeriodOverlapRejectedBySchema(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clash := &ledger.FiscalPeriod{
		CompanyID: f.company.ID, Year: 2025, Number: 2, Name: "2025-01b",
		StartDate: day("2025-01-15"), EndDate: day("2025-02-14"),
	}
	assert.ErrorIs(t, f.s.CreatePeriod(ctx, clash), ledger.ErrPeriodOverlap)

	feb := &ledger.FiscalPeriod{
		CompanyID: f.company.ID, Year: 2025, Number: 2, Name: "2025-02",
		StartDate: day("2025-02-01"), EndDate: day("2025-02-28"),
	}
	require.NoError(t, f.s.CreatePeriod(ctx, feb))

	feb.StartDate = day("2025-01-31")
	assert.ErrorIs(t, f.s.UpdatePeriod(ctx, feb), ledger.ErrPeriodOverlap)

	// Another company may use the same dates.
	other := &ledger.Company{Code: "OTHER", Name: "Other Ltd"}
	require.NoError(t, f.s.CreateCompany(ctx, other, false))
	require.NoError(t, f.s.CreatePeriod(ctx, &ledger.FiscalPeriod{
		CompanyID: other.ID, Year: 2025, Number: 1, Name: "2025-01",
		StartDate: day("2025-01-01"), EndDate: day("2025-01-31"),
	}))
}

func TestMalformedStoredDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.s.CreateJournal(ctx, f.journal("J-1", "2025-01-10", "100")))

	_, err := f.s.writer.ExecContext(ctx, `UPDATE journals SET journal_date = '2025-01-1x'`)
	require.NoError(t, err)

	_, err = f.s.LinesForCompany(ctx, f.company.ID, ledger.DateRange{})
	assert.ErrorContains(t, err, "journal_date")
	_, err = f.s.ListJournals(ctx, f.company.ID, JournalFilter{})
	assert.ErrorContains(t, err, "journal_date")

	_, err = f.s.writer.ExecContext(ctx, `UPDATE fiscal_periods SET updated_at = 'yesterday'`)
	require.NoError(t, err)
	_, err = f.s.GetPeriod(ctx, f.company.ID, f.period.ID)
	assert.ErrorContains(t, err, "updated_at")
}
