package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

const periodColumns = `id, company_id, period_year, period_number, name, start_date, end_date, closed, created_at, updated_at`

// CreatePeriod inserts a period. Callers check overlap first; this only enforces the
// row-level constraints.
func (s *Store) CreatePeriod(ctx context.Context, p *ledger.FiscalPeriod) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = newID()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO fiscal_periods (`+periodColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Year, p.Number, p.Name, formatDate(p.StartDate), formatDate(p.EndDate),
		boolToInt(p.Closed), formatTimestamp(now), formatTimestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert fiscal period: %w", translate(err, ledger.ErrDuplicateCode))
	}
	return nil
}

func (s *Store) GetPeriod(ctx context.Context, companyID, id string) (*ledger.FiscalPeriod, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE company_id = ? AND id = ?`, companyID, id)
	return scanPeriod(row)
}

func (s *Store) ListPeriods(ctx context.Context, companyID string) ([]ledger.FiscalPeriod, error) {
	return s.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE company_id = ? ORDER BY start_date`, companyID)
}

// PeriodContaining returns the period whose inclusive range holds d, or ErrNoFiscalPeriod.
func (s *Store) PeriodContaining(ctx context.Context, companyID string, d time.Time) (*ledger.FiscalPeriod, error) {
	day := formatDate(d)
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods
		 WHERE company_id = ? AND start_date <= ? AND end_date >= ?
		 ORDER BY start_date LIMIT 1`, companyID, day, day)
	p, err := scanPeriod(row)
	if err == ledger.ErrPeriodNotFound {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNoFiscalPeriod, day)
	}
	return p, err
}

// OverlappingPeriods lists the periods sharing at least one day with r.
func (s *Store) OverlappingPeriods(ctx context.Context, companyID string, r ledger.DateRange) ([]ledger.FiscalPeriod, error) {
	return s.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods
		 WHERE company_id = ? AND start_date <= ? AND end_date >= ?
		 ORDER BY start_date`, companyID, formatDate(r.To), formatDate(r.From))
}

func (s *Store) UpdatePeriod(ctx context.Context, p *ledger.FiscalPeriod) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := s.writer.ExecContext(ctx,
		`UPDATE fiscal_periods SET period_year = ?, period_number = ?, name = ?, start_date = ?, end_date = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		p.Year, p.Number, p.Name, formatDate(p.StartDate), formatDate(p.EndDate), formatTimestamp(p.UpdatedAt),
		p.CompanyID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update fiscal period: %w", translate(err, ledger.ErrDuplicateCode))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrPeriodNotFound
	}
	return nil
}

// SetPeriodClosed flips the closed flag. It is a single-row write; the state
// machine lives in ledger.FiscalPeriod.
func (s *Store) SetPeriodClosed(ctx context.Context, companyID, id string, closed bool) error {
	res, err := s.writer.ExecContext(ctx,
		`UPDATE fiscal_periods SET closed = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		boolToInt(closed), formatTimestamp(time.Now().UTC()), companyID, id)
	if err != nil {
		return fmt.Errorf("set period closed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrPeriodNotFound
	}
	return nil
}

func (s *Store) DeletePeriod(ctx context.Context, companyID, id string) error {
	if _, err := s.GetPeriod(ctx, companyID, id); err != nil {
		return err
	}

	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journals WHERE fiscal_period_id = ?`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check journals: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d journals", ledger.ErrPeriodInUse, count)
	}

	if _, err := s.writer.ExecContext(ctx, `DELETE FROM fiscal_periods WHERE company_id = ? AND id = ?`, companyID, id); err != nil {
		return fmt.Errorf("delete fiscal period: %w", err)
	}
	return nil
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]ledger.FiscalPeriod, error) {
	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fiscal periods: %w", err)
	}
	defer rows.Close()

	var periods []ledger.FiscalPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

func scanPeriod(row scanner) (*ledger.FiscalPeriod, error) {
	var p ledger.FiscalPeriod
	var start, end, createdAt, updatedAt string
	var closed int
	err := row.Scan(&p.ID, &p.CompanyID, &p.Year, &p.Number, &p.Name, &start, &end, &closed, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPeriodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan fiscal period: %w", err)
	}
	p.Closed = closed == 1
	if p.StartDate, err = parseDate("start_date", start); err != nil {
		return nil, fmt.Errorf("fiscal period %s: %w", p.ID, err)
	}
	if p.EndDate, err = parseDate("end_date", end); err != nil {
		return nil, fmt.Errorf("fiscal period %s: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("fiscal period %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, fmt.Errorf("fiscal period %s: %w", p.ID, err)
	}
	return &p, nil
}
