package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type JournalLine struct {
	LineNumber   int                 `json:"line_number"`
	Side         Side                `json:"side"`
	AccountID    string              `json:"account_id"`
	AccountCode  string              `json:"account_code,omitempty"`
	SubAccountID string              `json:"sub_account_id,omitempty"`
	TaxTypeID    string              `json:"tax_type_id,omitempty"`
	PartnerID    string              `json:"partner_id,omitempty"`
	Amount       decimal.Decimal     `json:"amount"`
	TaxAmount    decimal.NullDecimal `json:"tax_amount"`
	Description  string              `json:"description,omitempty"`
}

type Journal struct {
	ID             string        `json:"id"`
	CompanyID      string        `json:"company_id"`
	FiscalPeriodID string        `json:"fiscal_period_id"`
	Number         string        `json:"journal_number"`
	Date           time.Time     `json:"journal_date"`
	Description    string        `json:"description"`
	Lines          []JournalLine `json:"lines"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Totals sums the debit and credit amounts of lines.
func Totals(lines []JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		switch l.Side {
		case Debit:
			debit = debit.Add(l.Amount)
		case Credit:
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// ValidateLines checks the shape of every line and that debits equal credits exactly.
func ValidateLines(lines []JournalLine) error {
	if len(lines) == 0 {
		return ErrEmptyJournal
	}

	seen := make(map[int]bool, len(lines))
	for _, l := range lines {
		if err := validateLine(l); err != nil {
			return err
		}
		if seen[l.LineNumber] {
			return &InvalidLineError{LineNumber: l.LineNumber, Reason: "duplicate line number"}
		}
		seen[l.LineNumber] = true
	}

	debit, credit := Totals(lines)
	if !debit.Equal(credit) {
		return &ImbalancedJournalError{DebitTotal: debit, CreditTotal: credit}
	}
	if !InAmountRange(debit) {
		return fmt.Errorf("%w: journal total %s exceeds the maximum of %s", ErrInvalidAmount, debit, MaxAmount)
	}
	return nil
}

func validateLine(l JournalLine) error {
	invalid := func(format string, args ...any) error {
		return &InvalidLineError{LineNumber: l.LineNumber, Reason: fmt.Sprintf(format, args...)}
	}

	if l.LineNumber <= 0 {
		return invalid("line number must be positive")
	}
	if !l.Side.Valid() {
		return invalid("side must be DEBIT or CREDIT, got %q", l.Side)
	}
	if strings.TrimSpace(l.AccountID) == "" && strings.TrimSpace(l.AccountCode) == "" {
		return invalid("account is required")
	}
	if !l.Amount.IsPositive() {
		return invalid("amount must be greater than zero, got %s", l.Amount)
	}
	if !HasAmountScale(l.Amount) {
		return invalid("amount %s has more than %d decimal places", l.Amount, AmountScale)
	}
	if !InAmountRange(l.Amount) {
		return invalid("amount %s exceeds the maximum of %s", l.Amount, MaxAmount)
	}
	if l.TaxAmount.Valid {
		if l.TaxAmount.Decimal.IsNegative() {
			return invalid("tax amount must not be negative, got %s", l.TaxAmount.Decimal)
		}
		if !HasAmountScale(l.TaxAmount.Decimal) {
			return invalid("tax amount %s has more than %d decimal places", l.TaxAmount.Decimal, AmountScale)
		}
		if !InAmountRange(l.TaxAmount.Decimal) {
			return invalid("tax amount %s exceeds the maximum of %s", l.TaxAmount.Decimal, MaxAmount)
		}
	}
	return nil
}

// ValidatePosting is the full posting check: line shape, exact balance, then the
// fiscal period gate for postingDate. It returns the period the journal belongs to
// and has no side effects.
func ValidatePosting(lines []JournalLine, postingDate time.Time, periods []FiscalPeriod) (*FiscalPeriod, error) {
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}
	return PostablePeriod(periods, postingDate)
}

// Validate checks the journal header and then runs ValidatePosting.
func (j *Journal) Validate(periods []FiscalPeriod) (*FiscalPeriod, error) {
	if strings.TrimSpace(j.Number) == "" {
		return nil, ErrMissingJournalNumber
	}
	if j.Date.IsZero() {
		return nil, fmt.Errorf("%w: journal date is required", ErrInvalidDate)
	}
	j.Date = Day(j.Date)
	return ValidatePosting(j.Lines, j.Date, periods)
}
