package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

const taxTypeColumns = `id, company_id, code, name, rate, effective_from, effective_to, created_at`

func (s *Store) CreateTaxType(ctx context.Context, t *ledger.TaxType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = time.Now().UTC()

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO tax_types (`+taxTypeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CompanyID, t.Code, t.Name, t.Rate.String(),
		formatDate(t.EffectiveFrom), effectiveTo(t), formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert tax type: %w", translate(err, ledger.ErrDuplicateCode))
	}
	return nil
}

func (s *Store) GetTaxType(ctx context.Context, companyID, id string) (*ledger.TaxType, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+taxTypeColumns+` FROM tax_types WHERE company_id = ? AND id = ?`, companyID, id)
	return scanTaxType(row)
}

// ListTaxTypes returns the company's tax types. A non-zero effectiveOn keeps only
// the types whose range covers that day.
func (s *Store) ListTaxTypes(ctx context.Context, companyID string, effectiveOn time.Time) ([]ledger.TaxType, error) {
	query := `SELECT ` + taxTypeColumns + ` FROM tax_types WHERE company_id = ?`
	args := []any{companyID}
	if !effectiveOn.IsZero() {
		d := formatDate(effectiveOn)
		query += ` AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)`
		args = append(args, d, d)
	}
	query += ` ORDER BY code`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tax types: %w", err)
	}
	defer rows.Close()

	var types []ledger.TaxType
	for rows.Next() {
		t, err := scanTaxType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *t)
	}
	return types, rows.Err()
}

func (s *Store) UpdateTaxType(ctx context.Context, t *ledger.TaxType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE tax_types SET code = ?, name = ?, rate = ?, effective_from = ?, effective_to = ?
		 WHERE company_id = ? AND id = ?`,
		t.Code, t.Name, t.Rate.String(), formatDate(t.EffectiveFrom), effectiveTo(t), t.CompanyID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update tax type: %w", translate(err, ledger.ErrDuplicateCode))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTaxTypeNotFound
	}
	return nil
}

func (s *Store) DeleteTaxType(ctx context.Context, companyID, id string) error {
	if _, err := s.GetTaxType(ctx, companyID, id); err != nil {
		return err
	}

	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_lines WHERE tax_type_id = ?`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check lines: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d lines", ledger.ErrTaxTypeInUse, count)
	}

	if _, err := s.writer.ExecContext(ctx, `DELETE FROM tax_types WHERE company_id = ? AND id = ?`, companyID, id); err != nil {
		return fmt.Errorf("delete tax type: %w", err)
	}
	return nil
}

func effectiveTo(t *ledger.TaxType) sql.NullString {
	if t.EffectiveTo == nil {
		return sql.NullString{}
	}
	return nullString(formatDate(*t.EffectiveTo))
}

func scanTaxType(row scanner) (*ledger.TaxType, error) {
	var t ledger.TaxType
	var rate, from, createdAt string
	var to sql.NullString
	err := row.Scan(&t.ID, &t.CompanyID, &t.Code, &t.Name, &rate, &from, &to, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrTaxTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tax type: %w", err)
	}
	t.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("tax type %s: bad rate %q: %w", t.Code, rate, err)
	}
	if t.EffectiveFrom, err = parseDate("effective_from", from); err != nil {
		return nil, fmt.Errorf("tax type %s: %w", t.Code, err)
	}
	if to.Valid {
		d, err := parseDate("effective_to", to.String)
		if err != nil {
			return nil, fmt.Errorf("tax type %s: %w", t.Code, err)
		}
		t.EffectiveTo = &d
	}
	if t.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("tax type %s: %w", t.Code, err)
	}
	return &t, nil
}
