package bookkeeping

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/store"
)

type harness struct {
	svc     *Service
	st      *store.Store
	logs    *observer.ObservedLogs
	company string
	jan     *ledger.FiscalPeriod
	feb     *ledger.FiscalPeriod
}

func day(s string) time.Time {
	d, err := ledger.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	svc := New(st, zap.New(core))

	c := &ledger.Company{Code: "ACME", Name: "Acme Ltd"}
	require.NoError(t, st.CreateCompany(ctx, c, true))

	h := &harness{svc: svc, st: st, logs: logs, company: c.ID}
	h.jan = &ledger.FiscalPeriod{Year: 2025, Number: 1, Name: "2025-01", StartDate: day("2025-01-01"), EndDate: day("2025-01-31")}
	h.feb = &ledger.FiscalPeriod{Year: 2025, Number: 2, Name: "2025-02", StartDate: day("2025-02-01"), EndDate: day("2025-02-28")}
	require.NoError(t, svc.CreatePeriod(ctx, c.ID, h.jan))
	require.NoError(t, svc.CreatePeriod(ctx, c.ID, h.feb))
	return h
}

type leg struct {
	side    ledger.Side
	account string
	amount  string
}

func journal(number, on string, legs ...leg) *ledger.Journal {
	j := &ledger.Journal{Number: number, Date: day(on), Description: number}
	for i, l := range legs {
		j.Lines = append(j.Lines, ledger.JournalLine{
			LineNumber: i + 1, Side: l.side, AccountCode: l.account, Amount: dec(l.amount),
		})
	}
	return j
}

func (h *harness) post(t *testing.T, number, on string, legs ...leg) *ledger.Journal {
	t.Helper()
	j := journal(number, on, legs...)
	require.NoError(t, h.svc.PostJournal(context.Background(), h.company, j))
	return j
}

func (h *harness) lineCount(t *testing.T) int {
	t.Helper()
	lines, err := h.st.LinesForCompany(context.Background(), h.company, ledger.DateRange{})
	require.NoError(t, err)
	return len(lines)
}

func TestGeneralLedgerSingleDeposit(t *testing.T) {
	h := setup(t)
	j := h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1000", "1000"}, leg{ledger.Credit, "3000", "1000"})
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, h.jan.ID, j.FiscalPeriodID)

	gl, err := h.svc.GeneralLedger(context.Background(), h.company, "1000", day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", gl.OpeningBalance.StringFixed(2))
	require.Len(t, gl.Entries, 1)
	assert.Equal(t, "1000.00", gl.Entries[0].Debit.StringFixed(2))
	assert.Equal(t, "1000.00", gl.Entries[0].Balance.StringFixed(2))
	assert.Equal(t, "1000.00", gl.ClosingBalance.StringFixed(2))
	assert.Equal(t, "Cash", gl.AccountName)
}

func TestImbalancedJournalNotPersisted(t *testing.T) {
	h := setup(t)
	j := journal("J-1", "2025-01-10", leg{ledger.Debit, "1000", "500"}, leg{ledger.Credit, "3000", "400"})

	err := h.svc.PostJournal(context.Background(), h.company, j)
	var imb *ledger.ImbalancedJournalError
	require.True(t, errors.As(err, &imb))
	assert.Equal(t, "500.00", imb.DebitTotal.StringFixed(2))
	assert.Equal(t, "400.00", imb.CreditTotal.StringFixed(2))
	assert.Zero(t, h.lineCount(t))
}

func TestClosedPeriodBlocksPostingUntilReopened(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	p, err := h.svc.ClosePeriod(ctx, h.company, h.jan.ID)
	require.NoError(t, err)
	assert.True(t, p.Closed)

	_, err = h.svc.ClosePeriod(ctx, h.company, h.jan.ID)
	assert.ErrorIs(t, err, ledger.ErrPeriodAlreadyClosed)

	j := journal("J-1", "2025-01-15", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"})
	assert.ErrorIs(t, h.svc.PostJournal(ctx, h.company, j), ledger.ErrPeriodClosed)
	assert.Zero(t, h.lineCount(t))

	_, err = h.svc.ReopenPeriod(ctx, h.company, h.jan.ID)
	require.NoError(t, err)
	_, err = h.svc.ReopenPeriod(ctx, h.company, h.jan.ID)
	assert.ErrorIs(t, err, ledger.ErrPeriodNotClosed)

	j = journal("J-1", "2025-01-15", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"})
	assert.NoError(t, h.svc.PostJournal(ctx, h.company, j))
}

func TestTrialBalanceAfterPostings(t *testing.T) {
	h := setup(t)
	h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1000", "1000"}, leg{ledger.Credit, "3000", "1000"})
	h.post(t, "J-2", "2025-01-12", leg{ledger.Debit, "5200", "300"}, leg{ledger.Credit, "1000", "300"})
	h.post(t, "J-3", "2025-02-03", leg{ledger.Debit, "1000", "50"}, leg{ledger.Credit, "4000", "50"})

	tb, err := h.svc.TrialBalance(context.Background(), h.company, day("2025-01-31"))
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.True(t, tb.Difference.IsZero())
	assert.Equal(t, "1000.00", tb.TotalDebit.StringFixed(2))
	assert.Equal(t, tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
	assert.Len(t, tb.Entries, 3, "February sales are after as-of")
	assert.Zero(t, h.logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestProfitLossForPeriod(t *testing.T) {
	h := setup(t)
	h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1100", "1000"}, leg{ledger.Credit, "4000", "1000"})
	h.post(t, "J-2", "2025-01-20", leg{ledger.Debit, "5200", "400"}, leg{ledger.Credit, "1000", "400"})

	pl, err := h.svc.ProfitLoss(context.Background(), h.company, day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", pl.Revenue.StringFixed(2))
	assert.Equal(t, "400.00", pl.Expense.StringFixed(2))
	assert.Equal(t, "600.00", pl.NetProfit.StringFixed(2))
}

func TestBalanceSheet(t *testing.T) {
	h := setup(t)
	h.post(t, "J-1", "2025-01-02", leg{ledger.Debit, "1000", "5000"}, leg{ledger.Credit, "3000", "5000"})
	h.post(t, "J-2", "2025-02-10", leg{ledger.Debit, "1000", "800"}, leg{ledger.Credit, "4000", "800"})
	h.post(t, "J-3", "2025-02-11", leg{ledger.Debit, "5300", "100"}, leg{ledger.Credit, "2000", "100"})

	bs, err := h.svc.BalanceSheet(context.Background(), h.company, day("2025-02-28"))
	require.NoError(t, err)
	assert.Equal(t, h.feb.StartDate, bs.NetProfitFrom)
	assert.Equal(t, "5800.00", bs.Assets.StringFixed(2))
	assert.Equal(t, "100.00", bs.Liabilities.StringFixed(2))
	assert.Equal(t, "5000.00", bs.Equity.StringFixed(2))
	assert.Equal(t, "700.00", bs.NetProfit.StringFixed(2))
	assert.True(t, bs.Difference.IsZero())
}

func TestBalanceSheetDifferenceIsLogged(t *testing.T) {
	h := setup(t)
	h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1000", "800"}, leg{ledger.Credit, "4000", "800"})

	// January profit is outside February's net profit window and was never closed to equity.
	bs, err := h.svc.BalanceSheet(context.Background(), h.company, day("2025-02-15"))
	require.NoError(t, err)
	assert.Equal(t, "800.00", bs.Difference.StringFixed(2))
	assert.Equal(t, 1, h.logs.FilterMessage("balance sheet does not reconcile").Len())

	// With no containing period the window falls back to 1 January.
	bs, err = h.svc.BalanceSheet(context.Background(), h.company, day("2025-03-15"))
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-01"), bs.NetProfitFrom)
	assert.True(t, bs.Difference.IsZero())
}

func TestPostJournalErrors(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	err := h.svc.PostJournal(ctx, h.company,
		journal("J-1", "2025-03-10", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"}))
	assert.ErrorIs(t, err, ledger.ErrNoFiscalPeriod)

	err = h.svc.PostJournal(ctx, h.company,
		journal("J-1", "2025-01-10", leg{ledger.Debit, "9999", "10"}, leg{ledger.Credit, "3000", "10"}))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	err = h.svc.PostJournal(ctx, "no-such-company",
		journal("J-1", "2025-01-10", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"}))
	assert.ErrorIs(t, err, ledger.ErrCompanyNotFound)

	h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"})
	err = h.svc.PostJournal(ctx, h.company,
		journal("J-1", "2025-01-11", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"}))
	assert.ErrorIs(t, err, ledger.ErrDuplicateJournalNumber)
	assert.Equal(t, 2, h.lineCount(t))
}

func TestReplaceJournal(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	j := h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"})

	// Move the journal into February with a new amount.
	upd := journal("J-1", "2025-02-05", leg{ledger.Debit, "1000", "25"}, leg{ledger.Credit, "3000", "25"})
	require.NoError(t, h.svc.ReplaceJournal(ctx, h.company, j.ID, upd))

	got, err := h.svc.GetJournal(ctx, h.company, j.ID)
	require.NoError(t, err)
	assert.Equal(t, h.feb.ID, got.FiscalPeriodID)
	assert.Equal(t, "25.00", got.Lines[0].Amount.StringFixed(2))
	assert.Equal(t, "1000", got.Lines[0].AccountCode)

	// Into a closed period: refused.
	_, err = h.svc.ClosePeriod(ctx, h.company, h.jan.ID)
	require.NoError(t, err)
	back := journal("J-1", "2025-01-05", leg{ledger.Debit, "1000", "25"}, leg{ledger.Credit, "3000", "25"})
	assert.ErrorIs(t, h.svc.ReplaceJournal(ctx, h.company, j.ID, back), ledger.ErrPeriodClosed)

	// Out of a closed period: refused too.
	_, err = h.svc.ClosePeriod(ctx, h.company, h.feb.ID)
	require.NoError(t, err)
	stay := journal("J-1", "2025-02-06", leg{ledger.Debit, "1000", "25"}, leg{ledger.Credit, "3000", "25"})
	assert.ErrorIs(t, h.svc.ReplaceJournal(ctx, h.company, j.ID, stay), ledger.ErrPeriodClosed)
	assert.ErrorIs(t, h.svc.DeleteJournal(ctx, h.company, j.ID), ledger.ErrPeriodClosed)

	_, err = h.svc.ReopenPeriod(ctx, h.company, h.feb.ID)
	require.NoError(t, err)
	require.NoError(t, h.svc.DeleteJournal(ctx, h.company, j.ID))
	assert.Zero(t, h.lineCount(t))
	assert.ErrorIs(t, h.svc.DeleteJournal(ctx, h.company, j.ID), ledger.ErrJournalNotFound)
}

func TestPeriodOverlapAndUpdate(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	q1 := &ledger.FiscalPeriod{Year: 2025, Number: 9, Name: "Q1", StartDate: day("2025-01-15"), EndDate: day("2025-03-31")}
	assert.ErrorIs(t, h.svc.CreatePeriod(ctx, h.company, q1), ledger.ErrPeriodOverlap)

	bad := &ledger.FiscalPeriod{Year: 2025, Number: 3, Name: "2025-03", StartDate: day("2025-03-31"), EndDate: day("2025-03-01")}
	assert.ErrorIs(t, h.svc.CreatePeriod(ctx, h.company, bad), ledger.ErrInvalidDateRange)

	// Shrinking January is fine until a journal would be orphaned.
	upd := *h.jan
	upd.EndDate = day("2025-01-20")
	require.NoError(t, h.svc.UpdatePeriod(ctx, h.company, h.jan.ID, &upd))

	h.post(t, "J-1", "2025-01-18", leg{ledger.Debit, "1000", "1"}, leg{ledger.Credit, "3000", "1"})
	upd.EndDate = day("2025-01-10")
	assert.ErrorIs(t, h.svc.UpdatePeriod(ctx, h.company, h.jan.ID, &upd), ledger.ErrPeriodInUse)

	grow := *h.jan
	grow.EndDate = day("2025-02-10")
	assert.ErrorIs(t, h.svc.UpdatePeriod(ctx, h.company, h.jan.ID, &grow), ledger.ErrPeriodOverlap)

	_, err := h.svc.ClosePeriod(ctx, h.company, h.feb.ID)
	require.NoError(t, err)
	rename := *h.feb
	rename.Name = "February"
	assert.ErrorIs(t, h.svc.UpdatePeriod(ctx, h.company, h.feb.ID, &rename), ledger.ErrPeriodClosed)
	assert.ErrorIs(t, h.svc.DeletePeriod(ctx, h.company, h.feb.ID), ledger.ErrPeriodClosed)
}

func TestLargeAmounts(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	big := journal("J-BIG", "2025-01-10",
		leg{ledger.Debit, "1000", "184467440737095516.17"}, leg{ledger.Credit, "3000", "184467440737095516.17"})
	err := h.svc.PostJournal(ctx, h.company, big)
	var le *ledger.InvalidLineError
	require.True(t, errors.As(err, &le), "got %v", err)
	assert.Equal(t, 1, le.LineNumber)

	wraps := journal("J-WRAP", "2025-01-10",
		leg{ledger.Debit, "1000", "100000000000000000"}, leg{ledger.Credit, "3000", "100000000000000000"})
	assert.ErrorIs(t, h.svc.PostJournal(ctx, h.company, wraps), ledger.ErrInvalidLine)
	assert.Zero(t, h.lineCount(t))

	top := h.post(t, "J-MAX", "2025-01-10",
		leg{ledger.Debit, "1000", "92233720368547758.07"}, leg{ledger.Credit, "3000", "92233720368547758.07"})
	got, err := h.svc.GetJournal(ctx, h.company, top.ID)
	require.NoError(t, err)
	assert.Equal(t, "92233720368547758.07", got.Lines[0].Amount.StringFixed(2))

	gl, err := h.svc.GeneralLedger(ctx, h.company, "1000", day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, "92233720368547758.07", gl.ClosingBalance.StringFixed(2))
}

func TestTaxAmountComputedFromTaxType(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	vat := &ledger.TaxType{CompanyID: h.company, Code: "VAT", Name: "VAT 10%", Rate: dec("10"), EffectiveFrom: day("2025-01-01")}
	require.NoError(t, h.st.CreateTaxType(ctx, vat))

	j := journal("J-1", "2025-01-10", leg{ledger.Debit, "5200", "1.25"}, leg{ledger.Credit, "1000", "1.25"})
	j.Lines[0].TaxTypeID = vat.ID
	require.NoError(t, h.svc.PostJournal(ctx, h.company, j))

	got, err := h.svc.GetJournal(ctx, h.company, j.ID)
	require.NoError(t, err)
	require.True(t, got.Lines[0].TaxAmount.Valid)
	assert.Equal(t, "0.12", got.Lines[0].TaxAmount.Decimal.StringFixed(2))
	assert.False(t, got.Lines[1].TaxAmount.Valid)

	unknown := journal("J-2", "2025-01-11", leg{ledger.Debit, "5200", "1"}, leg{ledger.Credit, "1000", "1"})
	unknown.Lines[0].TaxTypeID = "missing"
	assert.ErrorIs(t, h.svc.PostJournal(ctx, h.company, unknown), ledger.ErrTaxTypeNotFound)
}

func TestReportsOnEmptyLedger(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	gl, err := h.svc.GeneralLedger(ctx, h.company, "1000", day("2025-01-31"), day("2025-01-01"))
	require.NoError(t, err)
	assert.Empty(t, gl.Entries)
	assert.True(t, gl.ClosingBalance.IsZero())

	pl, err := h.svc.ProfitLoss(ctx, h.company, day("2025-01-01"), day("2025-12-31"))
	require.NoError(t, err)
	assert.True(t, pl.NetProfit.IsZero())

	_, err = h.svc.GeneralLedger(ctx, h.company, "nope", day("2025-01-01"), day("2025-01-31"))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	_, err = h.svc.TrialBalance(ctx, "nope", day("2025-01-31"))
	assert.ErrorIs(t, err, ledger.ErrCompanyNotFound)
}

func TestReportsIdempotent(t *testing.T) {
	h := setup(t)
	h.post(t, "J-1", "2025-01-10", leg{ledger.Debit, "1000", "10"}, leg{ledger.Credit, "3000", "10"})
	h.post(t, "J-2", "2025-01-10", leg{ledger.Debit, "5200", "4"}, leg{ledger.Credit, "1000", "4"})

	ctx := context.Background()
	first, err := h.svc.GeneralLedger(ctx, h.company, "1000", day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	second, err := h.svc.GeneralLedger(ctx, h.company, "1000", day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "J-1", first.Entries[0].JournalNumber)
	assert.Equal(t, "6.00", first.ClosingBalance.StringFixed(2))
}
