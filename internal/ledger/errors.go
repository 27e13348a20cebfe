package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidAccountCode     = errors.New("invalid account code")
	ErrSystemAccountType      = errors.New("type of a system account cannot be changed")
	ErrAccountInUse           = errors.New("account has posted lines")
	ErrDuplicateAccount       = errors.New("account code already exists")
	ErrAccountNotFound        = errors.New("account not found")
	ErrSubAccountNotFound     = errors.New("sub-account not found")
	ErrPartnerNotFound        = errors.New("partner not found")
	ErrDuplicateCode          = errors.New("code already exists")
	ErrCompanyNotFound        = errors.New("company not found")
	ErrDuplicateCompany       = errors.New("company code already exists")
	ErrJournalNotFound        = errors.New("journal not found")
	ErrDuplicateJournalNumber = errors.New("journal number already in use")
	ErrEmptyJournal           = errors.New("journal must have at least one line")
	ErrMissingJournalNumber   = errors.New("journal number is required")
	ErrUnbalancedJournal      = errors.New("journal debits and credits do not balance")
	ErrInvalidLine            = errors.New("invalid journal line")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidDateRange       = errors.New("end date is before start date")
	ErrPeriodNotFound         = errors.New("fiscal period not found")
	ErrNoFiscalPeriod         = errors.New("no fiscal period contains the date")
	ErrPeriodClosed           = errors.New("fiscal period is closed")
	ErrPeriodAlreadyClosed    = errors.New("fiscal period is already closed")
	ErrPeriodNotClosed        = errors.New("fiscal period is not closed")
	ErrPeriodOverlap          = errors.New("fiscal period overlaps an existing period")
	ErrPeriodInUse            = errors.New("fiscal period has journals")
	ErrTaxTypeNotFound        = errors.New("tax type not found")
	ErrInvalidTaxRate         = errors.New("tax rate must be between 0 and 100")
	ErrTaxTypeInUse           = errors.New("tax type is referenced by journal lines")
)

// ImbalancedJournalError reports both totals of a journal whose sides differ.
type ImbalancedJournalError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *ImbalancedJournalError) Error() string {
	return fmt.Sprintf("%s: debit total %s, credit total %s",
		ErrUnbalancedJournal, e.DebitTotal.StringFixed(2), e.CreditTotal.StringFixed(2))
}

func (e *ImbalancedJournalError) Unwrap() error { return ErrUnbalancedJournal }

// InvalidLineError names the journal line that failed validation.
type InvalidLineError struct {
	LineNumber int
	Reason     string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrInvalidLine, e.LineNumber, e.Reason)
}

func (e *InvalidLineError) Unwrap() error { return ErrInvalidLine }
