package ledger

import (
	"fmt"
	"strings"
	"time"
)

type FiscalPeriod struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Year      int       `json:"period_year"`
	Number    int       `json:"period_number"`
	Name      string    `json:"period_name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Closed    bool      `json:"is_closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *FiscalPeriod) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: period name is required", ErrInvalidInput)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDate)
	}
	p.StartDate, p.EndDate = Day(p.StartDate), Day(p.EndDate)
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: %s < %s", ErrInvalidDateRange, FormatDate(p.EndDate), FormatDate(p.StartDate))
	}
	if p.Number <= 0 {
		return fmt.Errorf("%w: period number must be positive, got %d", ErrInvalidInput, p.Number)
	}
	return nil
}

// Contains reports whether d falls in [StartDate, EndDate].
func (p FiscalPeriod) Contains(d time.Time) bool {
	return DateRange{From: p.StartDate, To: p.EndDate}.Contains(d)
}

// Overlaps reports whether [start, end] shares at least one day with the period.
func (p FiscalPeriod) Overlaps(start, end time.Time) bool {
	return !Day(p.StartDate).After(Day(end)) && !Day(p.EndDate).Before(Day(start))
}

// Close moves the period from OPEN to CLOSED.
func (p *FiscalPeriod) Close() error {
	if p.Closed {
		return fmt.Errorf("%w: %s", ErrPeriodAlreadyClosed, p.Name)
	}
	p.Closed = true
	return nil
}

// Reopen moves the period from CLOSED back to OPEN.
func (p *FiscalPeriod) Reopen() error {
	if !p.Closed {
		return fmt.Errorf("%w: %s", ErrPeriodNotClosed, p.Name)
	}
	p.Closed = false
	return nil
}

// CheckOpen fails with ErrPeriodClosed when journals in the period may not change.
func (p *FiscalPeriod) CheckOpen() error {
	if p.Closed {
		return fmt.Errorf("%w: %s", ErrPeriodClosed, p.Name)
	}
	return nil
}

// ResolvePeriod finds the single period whose range contains d.
func ResolvePeriod(periods []FiscalPeriod, d time.Time) (*FiscalPeriod, error) {
	var found *FiscalPeriod
	for i := range periods {
		if !periods[i].Contains(d) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s and %s both contain %s",
				ErrPeriodOverlap, found.Name, periods[i].Name, FormatDate(d))
		}
		found = &periods[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFiscalPeriod, FormatDate(d))
	}
	return found, nil
}

// PostablePeriod resolves the period for d and requires it to be open.
func PostablePeriod(periods []FiscalPeriod, d time.Time) (*FiscalPeriod, error) {
	p, err := ResolvePeriod(periods, d)
	if err != nil {
		return nil, err
	}
	if err := p.CheckOpen(); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckNoOverlap fails if candidate shares a day with any other period in existing.
// A period with the same ID as candidate is ignored so updates can be checked.
func CheckNoOverlap(candidate FiscalPeriod, existing []FiscalPeriod) error {
	for _, p := range existing {
		if p.ID != "" && p.ID == candidate.ID {
			continue
		}
		if p.Overlaps(candidate.StartDate, candidate.EndDate) {
			return fmt.Errorf("%w: %s (%s to %s)", ErrPeriodOverlap,
				p.Name, FormatDate(p.StartDate), FormatDate(p.EndDate))
		}
	}
	return nil
}
