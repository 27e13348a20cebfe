package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

// CreateCompany inserts the company and, when seedChart is set, the default chart
// of accounts as system accounts, all in one transaction.
func (s *Store) CreateCompany(ctx context.Context, c *ledger.Company, seedChart bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = time.Now().UTC()

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO companies (id, code, name, fiscal_year_end_month, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Code, c.Name, c.FiscalYearEndMonth, formatTimestamp(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", translate(err, ledger.ErrDuplicateCompany))
	}

	if seedChart {
		for _, e := range ledger.DefaultChart {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO accounts (id, company_id, code, name, type, is_system) VALUES (?, ?, ?, ?, ?, 1)`,
				newID(), c.ID, e.Code, e.Name, string(e.Type),
			)
			if err != nil {
				return fmt.Errorf("seed account %s: %w", e.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*ledger.Company, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, code, name, fiscal_year_end_month, created_at FROM companies WHERE id = ?`, id)
	return scanCompany(row)
}

func (s *Store) GetCompanyByCode(ctx context.Context, code string) (*ledger.Company, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, code, name, fiscal_year_end_month, created_at FROM companies WHERE code = ?`, code)
	return scanCompany(row)
}

func (s *Store) ListCompanies(ctx context.Context) ([]ledger.Company, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, code, name, fiscal_year_end_month, created_at FROM companies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []ledger.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (*ledger.Company, error) {
	var c ledger.Company
	var createdAt string
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.FiscalYearEndMonth, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}
	if c.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("company %s: %w", c.ID, err)
	}
	return &c, nil
}
