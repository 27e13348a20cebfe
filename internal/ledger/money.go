package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every monetary amount carries.
const AmountScale int32 = 2

const DateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest amount that fits the integer cents column.
var MaxAmount = decimal.New(math.MaxInt64, -AmountScale)

// ParseAmount parses a decimal string such as "1000" or "12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// HasAmountScale reports whether d has at most AmountScale fractional digits.
func HasAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// InAmountRange reports whether |d| is at most MaxAmount.
func InAmountRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// ToCents converts an amount to integer minor units. It fails rather than
// truncate or wrap.
func ToCents(d decimal.Decimal) (int64, error) {
	if !HasAmountScale(d) || !InAmountRange(d) {
		return 0, fmt.Errorf("%w: %s does not fit in cents", ErrInvalidAmount, d)
	}
	return d.Shift(AmountScale).IntPart(), nil
}

func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -AmountScale)
}

// FormatAmount renders an amount with two decimals and thousands separators, e.g. "12,345.60".
func FormatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(AmountScale)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DateRange is an inclusive range of days. A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(d time.Time) bool {
	d = Day(d)
	if !r.From.IsZero() && d.Before(Day(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(Day(r.To)) {
		return false
	}
	return true
}
