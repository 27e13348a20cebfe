package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type errorResponse struct {
	Error       string           `json:"error"`
	Line        *int             `json:"line_number,omitempty"`
	DebitTotal  *decimal.Decimal `json:"debit_total,omitempty"`
	CreditTotal *decimal.Decimal `json:"credit_total,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps err to a status and carries the offending line number or the
// two journal totals when the error has them.
func writeFailure(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var imb *ledger.ImbalancedJournalError
	if errors.As(err, &imb) {
		resp.DebitTotal, resp.CreditTotal = &imb.DebitTotal, &imb.CreditTotal
	}
	var le *ledger.InvalidLineError
	if errors.As(err, &le) {
		resp.Line = &le.LineNumber
	}
	writeJSON(w, mapError(err), resp)
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrCompanyNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrSubAccountNotFound),
		errors.Is(err, ledger.ErrPartnerNotFound),
		errors.Is(err, ledger.ErrTaxTypeNotFound),
		errors.Is(err, ledger.ErrPeriodNotFound),
		errors.Is(err, ledger.ErrJournalNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateCompany),
		errors.Is(err, ledger.ErrDuplicateAccount),
		errors.Is(err, ledger.ErrDuplicateCode),
		errors.Is(err, ledger.ErrDuplicateJournalNumber),
		errors.Is(err, ledger.ErrPeriodClosed),
		errors.Is(err, ledger.ErrPeriodAlreadyClosed),
		errors.Is(err, ledger.ErrPeriodNotClosed),
		errors.Is(err, ledger.ErrPeriodOverlap),
		errors.Is(err, ledger.ErrPeriodInUse),
		errors.Is(err, ledger.ErrAccountInUse),
		errors.Is(err, ledger.ErrTaxTypeInUse),
		errors.Is(err, ledger.ErrSystemAccountType):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, ledger.ErrUnbalancedJournal),
		errors.Is(err, ledger.ErrInvalidLine),
		errors.Is(err, ledger.ErrEmptyJournal),
		errors.Is(err, ledger.ErrMissingJournalNumber),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrInvalidDateRange),
		errors.Is(err, ledger.ErrInvalidAccountType),
		errors.Is(err, ledger.ErrInvalidAccountCode),
		errors.Is(err, ledger.ErrInvalidTaxRate),
		errors.Is(err, ledger.ErrNoFiscalPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// queryDate reads a YYYY-MM-DD query parameter, falling back to def when absent.
func queryDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	d, err := ledger.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// optionalDate parses a request body date that may be empty.
func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ledger.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func today() time.Time {
	return ledger.Day(time.Now().UTC())
}
