package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// money renders d at two places so decimals with different exponents compare equal.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func line(n int, side Side, account, amount string) JournalLine {
	return JournalLine{LineNumber: n, Side: side, AccountID: account, Amount: dec(amount)}
}

func january2025(closed bool) []FiscalPeriod {
	return []FiscalPeriod{{
		ID: "p1", Year: 2025, Number: 1, Name: "2025-01",
		StartDate: day("2025-01-01"), EndDate: day("2025-01-31"), Closed: closed,
	}}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.50", money(d))

	_, err = ParseAmount("12,50")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCents(t *testing.T) {
	c, err := ToCents(dec("1234.56"))
	require.NoError(t, err)
	assert.Equal(t, int64(123456), c)
	c, err = ToCents(dec("1"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), c)
	c, err = ToCents(MaxAmount)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), c)
	assert.Equal(t, "1234.56", money(FromCents(123456)))

	_, err = ToCents(dec("184467440737095516.17"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ToCents(dec("0.105"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, HasAmountScale(dec("0.10")))
	assert.False(t, HasAmountScale(dec("0.105")))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "999.90", FormatAmount(dec("999.9")))
	assert.Equal(t, "1,000.00", FormatAmount(dec("1000")))
	assert.Equal(t, "-12,345,678.05", FormatAmount(dec("-12345678.05")))
}

func TestValidatePosting(t *testing.T) {
	periods := january2025(false)

	p, err := ValidatePosting([]JournalLine{
		line(1, Debit, "cash", "1000"),
		line(2, Credit, "capital", "1000.00"),
	}, day("2025-01-10"), periods)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestValidatePostingImbalance(t *testing.T) {
	_, err := ValidatePosting([]JournalLine{
		line(1, Debit, "cash", "500"),
		line(2, Credit, "capital", "400"),
	}, day("2025-01-10"), january2025(false))

	require.ErrorIs(t, err, ErrUnbalancedJournal)
	var imb *ImbalancedJournalError
	require.True(t, errors.As(err, &imb))
	assert.Equal(t, "500.00", money(imb.DebitTotal))
	assert.Equal(t, "400.00", money(imb.CreditTotal))
}

func TestValidatePostingOffByOneCent(t *testing.T) {
	_, err := ValidatePosting([]JournalLine{
		line(1, Debit, "cash", "100.01"),
		line(2, Credit, "capital", "100.00"),
	}, day("2025-01-10"), january2025(false))
	assert.ErrorIs(t, err, ErrUnbalancedJournal)
}

func TestValidatePostingBadLines(t *testing.T) {
	tests := []struct {
		name     string
		lines    []JournalLine
		wantLine int
	}{
		{"zero amount", []JournalLine{line(1, Debit, "a", "0"), line(2, Credit, "b", "0")}, 1},
		{"negative amount", []JournalLine{line(1, Debit, "a", "10"), line(2, Credit, "b", "-10")}, 2},
		{"three decimals", []JournalLine{line(1, Debit, "a", "10.005"), line(2, Credit, "b", "10.005")}, 1},
		{"bad side", []JournalLine{line(1, "LEFT", "a", "10"), line(2, Credit, "b", "10")}, 1},
		{"no account", []JournalLine{line(1, Debit, "a", "10"), line(2, Credit, "", "10")}, 2},
		{"zero line number", []JournalLine{line(0, Debit, "a", "10"), line(2, Credit, "b", "10")}, 0},
		{"duplicate line number", []JournalLine{line(3, Debit, "a", "10"), line(3, Credit, "b", "10")}, 3},
		{"amount beyond cents range", []JournalLine{
			line(1, Debit, "a", "184467440737095516.17"), line(2, Credit, "b", "184467440737095516.17"),
		}, 1},
		{"amount just past maximum", []JournalLine{
			line(1, Debit, "a", "92233720368547758.08"), line(2, Credit, "b", "92233720368547758.08"),
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePosting(tt.lines, day("2025-01-10"), january2025(false))
			require.ErrorIs(t, err, ErrInvalidLine)
			var le *InvalidLineError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.wantLine, le.LineNumber)
		})
	}
}

func TestValidatePostingLargeAmounts(t *testing.T) {
	_, err := ValidatePosting([]JournalLine{
		line(1, Debit, "a", "92233720368547758.07"),
		line(2, Credit, "b", "92233720368547758.07"),
	}, day("2025-01-10"), january2025(false))
	require.NoError(t, err)

	_, err = ValidatePosting([]JournalLine{
		line(1, Debit, "a", "50000000000000000"),
		line(2, Debit, "a", "50000000000000000"),
		line(3, Credit, "b", "50000000000000000"),
		line(4, Credit, "b", "50000000000000000"),
	}, day("2025-01-10"), january2025(false))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	l := line(1, Debit, "a", "10")
	l.TaxAmount = decimal.NewNullDecimal(dec("100000000000000000"))
	_, err = ValidatePosting([]JournalLine{l, line(2, Credit, "b", "10")}, day("2025-01-10"), january2025(false))
	var le *InvalidLineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 1, le.LineNumber)
}

func TestValidatePostingNegativeTax(t *testing.T) {
	l := line(1, Debit, "a", "10")
	l.TaxAmount = decimal.NewNullDecimal(dec("-1"))
	_, err := ValidatePosting([]JournalLine{l, line(2, Credit, "b", "10")}, day("2025-01-10"), january2025(false))
	assert.ErrorIs(t, err, ErrInvalidLine)
}

func TestValidatePostingEmpty(t *testing.T) {
	_, err := ValidatePosting(nil, day("2025-01-10"), january2025(false))
	assert.ErrorIs(t, err, ErrEmptyJournal)
}

func TestValidatePostingPeriodGate(t *testing.T) {
	lines := []JournalLine{line(1, Debit, "a", "10"), line(2, Credit, "b", "10")}

	_, err := ValidatePosting(lines, day("2025-02-01"), january2025(false))
	assert.ErrorIs(t, err, ErrNoFiscalPeriod)

	_, err = ValidatePosting(lines, day("2025-01-31"), january2025(true))
	assert.ErrorIs(t, err, ErrPeriodClosed)

	// Balance is checked before the period.
	_, err = ValidatePosting([]JournalLine{line(1, Debit, "a", "10")}, day("2025-01-31"), january2025(true))
	assert.ErrorIs(t, err, ErrUnbalancedJournal)
}

func TestJournalValidate(t *testing.T) {
	j := &Journal{Date: day("2025-01-10"), Lines: []JournalLine{line(1, Debit, "a", "10"), line(2, Credit, "b", "10")}}
	_, err := j.Validate(january2025(false))
	assert.ErrorIs(t, err, ErrMissingJournalNumber)

	j.Number = "J-1"
	p, err := j.Validate(january2025(false))
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestPeriodStateMachine(t *testing.T) {
	p := january2025(false)[0]

	require.NoError(t, p.CheckOpen())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), ErrPeriodAlreadyClosed)
	assert.ErrorIs(t, p.CheckOpen(), ErrPeriodClosed)

	require.NoError(t, p.Reopen())
	assert.ErrorIs(t, p.Reopen(), ErrPeriodNotClosed)
	assert.False(t, p.Closed)
}

func TestPeriodValidate(t *testing.T) {
	p := FiscalPeriod{Name: "bad", Number: 1, StartDate: day("2025-02-01"), EndDate: day("2025-01-31")}
	assert.ErrorIs(t, p.Validate(), ErrInvalidDateRange)

	p.EndDate = p.StartDate
	assert.NoError(t, p.Validate(), "single-day period is valid")
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	p := january2025(false)[0]
	assert.True(t, p.Contains(day("2025-01-01")))
	assert.True(t, p.Contains(day("2025-01-31")))
	assert.True(t, p.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(day("2024-12-31")))
	assert.False(t, p.Contains(day("2025-02-01")))
}

func TestCheckNoOverlap(t *testing.T) {
	existing := january2025(false)

	feb := FiscalPeriod{ID: "p2", Name: "2025-02", StartDate: day("2025-02-01"), EndDate: day("2025-02-28")}
	assert.NoError(t, CheckNoOverlap(feb, existing))

	touching := FiscalPeriod{ID: "p3", Name: "x", StartDate: day("2025-01-31"), EndDate: day("2025-02-28")}
	assert.ErrorIs(t, CheckNoOverlap(touching, existing), ErrPeriodOverlap)

	// An update of the same period does not collide with itself.
	self := existing[0]
	self.EndDate = day("2025-01-15")
	assert.NoError(t, CheckNoOverlap(self, existing))
}

func TestResolvePeriodAmbiguous(t *testing.T) {
	periods := append(january2025(false), FiscalPeriod{
		ID: "p9", Name: "2025-Q1", StartDate: day("2025-01-01"), EndDate: day("2025-03-31"),
	})
	_, err := ResolvePeriod(periods, day("2025-01-10"))
	assert.ErrorIs(t, err, ErrPeriodOverlap)
}

func TestTaxType(t *testing.T) {
	to := day("2025-12-31")
	tt := TaxType{Code: "VAT10", Name: "VAT 10%", Rate: dec("10"), EffectiveFrom: day("2025-01-01"), EffectiveTo: &to}
	require.NoError(t, tt.Validate())
	assert.True(t, tt.EffectiveOn(day("2025-12-31")))
	assert.False(t, tt.EffectiveOn(day("2026-01-01")))

	tt.EffectiveTo = nil
	assert.True(t, tt.EffectiveOn(day("2099-01-01")), "open-ended")

	tt.Rate = dec("100.01")
	assert.ErrorIs(t, tt.Validate(), ErrInvalidTaxRate)

	tt.Rate = dec("8")
	before := day("2024-12-31")
	tt.EffectiveTo = &before
	assert.ErrorIs(t, tt.Validate(), ErrInvalidDateRange)
}

func TestComputeTaxBankersRounding(t *testing.T) {
	assert.Equal(t, "100.00", money(ComputeTax(dec("1000"), dec("10"))))
	// 0.125 and 0.135 round half to even.
	assert.Equal(t, "0.12", money(ComputeTax(dec("1.25"), dec("10"))))
	assert.Equal(t, "0.14", money(ComputeTax(dec("1.35"), dec("10"))))
	assert.Equal(t, "0.00", money(ComputeTax(dec("99.99"), dec("0"))))
}

func TestAccountChangeType(t *testing.T) {
	a := Account{Code: "1000", Name: "Cash", Type: AccountTypeAsset, IsSystem: true}
	assert.ErrorIs(t, a.ChangeType(AccountTypeExpense), ErrSystemAccountType)
	assert.NoError(t, a.ChangeType(AccountTypeAsset))

	a.IsSystem = false
	require.NoError(t, a.ChangeType(AccountTypeExpense))
	assert.Equal(t, AccountTypeExpense, a.Type)
}
