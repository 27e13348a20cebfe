package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TaxType struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (t *TaxType) Validate() error {
	if err := validateCodeName("tax type", t.Code, t.Name); err != nil {
		return err
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidTaxRate, t.Rate)
	}
	if t.EffectiveFrom.IsZero() {
		return fmt.Errorf("%w: effective_from is required", ErrInvalidDate)
	}
	t.EffectiveFrom = Day(t.EffectiveFrom)
	if t.EffectiveTo != nil {
		to := Day(*t.EffectiveTo)
		if to.Before(t.EffectiveFrom) {
			return fmt.Errorf("%w: effective_to %s < effective_from %s",
				ErrInvalidDateRange, FormatDate(to), FormatDate(t.EffectiveFrom))
		}
		t.EffectiveTo = &to
	}
	t.Code = strings.TrimSpace(t.Code)
	return nil
}

// EffectiveOn reports whether the rate applies on d. A nil EffectiveTo is open-ended.
func (t TaxType) EffectiveOn(d time.Time) bool {
	r := DateRange{From: t.EffectiveFrom}
	if t.EffectiveTo != nil {
		r.To = *t.EffectiveTo
	}
	return r.Contains(d)
}

// ComputeTax returns amount × rate / 100 rounded half-to-even at two places.
func ComputeTax(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).RoundBank(AmountScale)
}
