package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

const journalColumns = `id, company_id, fiscal_period_id, journal_number, journal_date, description, created_at, updated_at`

// CreateJournal persists a validated journal atomically. Lines are inserted with the
// journal unfinalized, then finalizing fires the balance trigger; any failure rolls
// the whole write back.
func (s *Store) CreateJournal(ctx context.Context, j *ledger.Journal) error {
	if j.ID == "" {
		j.ID = newID()
	}
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM journals`).Scan(&seq); err != nil {
		return fmt.Errorf("next journal seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO journals (id, company_id, fiscal_period_id, seq, journal_number, journal_date, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CompanyID, j.FiscalPeriodID, seq, j.Number, formatDate(j.Date), j.Description,
		formatTimestamp(now), formatTimestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert journal: %w", translate(err, ledger.ErrDuplicateJournalNumber))
	}

	if err := insertLines(ctx, tx, j); err != nil {
		return err
	}
	if err := finalize(ctx, tx, j.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReplaceJournal rewrites the header and swaps every line for j.Lines. The journal
// keeps its creation sequence. Closed periods on either side abort via triggers.
func (s *Store) ReplaceJournal(ctx context.Context, j *ledger.Journal) error {
	j.UpdatedAt = time.Now().UTC()

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE journals SET finalized = 0 WHERE company_id = ? AND id = ?`, j.CompanyID, j.ID)
	if err != nil {
		return fmt.Errorf("unfinalize journal: %w", translate(err, nil))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrJournalNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM journal_lines WHERE journal_id = ?`, j.ID); err != nil {
		return fmt.Errorf("delete lines: %w", translate(err, nil))
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE journals SET fiscal_period_id = ?, journal_number = ?, journal_date = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		j.FiscalPeriodID, j.Number, formatDate(j.Date), j.Description, formatTimestamp(j.UpdatedAt), j.ID,
	)
	if err != nil {
		return fmt.Errorf("update journal: %w", translate(err, ledger.ErrDuplicateJournalNumber))
	}

	if err := insertLines(ctx, tx, j); err != nil {
		return err
	}
	if err := finalize(ctx, tx, j.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, j *ledger.Journal) error {
	for _, l := range j.Lines {
		amount, err := ledger.ToCents(l.Amount)
		if err != nil {
			return &ledger.InvalidLineError{LineNumber: l.LineNumber, Reason: err.Error()}
		}
		var tax sql.NullInt64
		if l.TaxAmount.Valid {
			cents, err := ledger.ToCents(l.TaxAmount.Decimal)
			if err != nil {
				return &ledger.InvalidLineError{LineNumber: l.LineNumber, Reason: err.Error()}
			}
			tax = sql.NullInt64{Int64: cents, Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO journal_lines (journal_id, line_number, side, account_id, sub_account_id, tax_type_id, partner_id, amount, tax_amount, description)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			j.ID, l.LineNumber, string(l.Side), l.AccountID,
			nullString(l.SubAccountID), nullString(l.TaxTypeID), nullString(l.PartnerID),
			amount, tax, l.Description,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", l.LineNumber, translate(err, nil))
		}
	}
	return nil
}

func finalize(ctx context.Context, tx *sql.Tx, journalID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE journals SET finalized = 1 WHERE id = ?`, journalID); err != nil {
		return fmt.Errorf("finalize journal: %w", translate(err, nil))
	}
	return nil
}

func (s *Store) GetJournal(ctx context.Context, companyID, id string) (*ledger.Journal, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE company_id = ? AND id = ? AND finalized = 1`, companyID, id)
	j, err := scanJournal(row)
	if err != nil {
		return nil, err
	}
	if j.Lines, err = s.journalLines(ctx, j.ID); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Store) GetJournalByNumber(ctx context.Context, companyID, number string) (*ledger.Journal, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE company_id = ? AND journal_number = ? AND finalized = 1`, companyID, number)
	j, err := scanJournal(row)
	if err != nil {
		return nil, err
	}
	if j.Lines, err = s.journalLines(ctx, j.ID); err != nil {
		return nil, err
	}
	return j, nil
}

// ListJournals returns journals in posting order, optionally bounded by date.
func (s *Store) ListJournals(ctx context.Context, companyID string, filter JournalFilter) ([]ledger.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE company_id = ? AND finalized = 1`
	args := []any{companyID}

	if !filter.Range.From.IsZero() {
		query += ` AND journal_date >= ?`
		args = append(args, formatDate(filter.Range.From))
	}
	if !filter.Range.To.IsZero() {
		query += ` AND journal_date <= ?`
		args = append(args, formatDate(filter.Range.To))
	}
	query += ` ORDER BY journal_date, seq`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	var journals []ledger.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range journals {
		if journals[i].Lines, err = s.journalLines(ctx, journals[i].ID); err != nil {
			return nil, err
		}
	}
	return journals, nil
}

// DeleteJournal removes the journal and its lines. A closed period aborts the delete.
func (s *Store) DeleteJournal(ctx context.Context, companyID, id string) error {
	res, err := s.writer.ExecContext(ctx, `DELETE FROM journals WHERE company_id = ? AND id = ?`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete journal: %w", translate(err, nil))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrJournalNotFound
	}
	return nil
}

func (s *Store) journalLines(ctx context.Context, journalID string) ([]ledger.JournalLine, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT l.line_number, l.side, l.account_id, a.code, l.sub_account_id, l.tax_type_id, l.partner_id,
			l.amount, l.tax_amount, l.description
		 FROM journal_lines l JOIN accounts a ON a.id = l.account_id
		 WHERE l.journal_id = ? ORDER BY l.line_number`, journalID)
	if err != nil {
		return nil, fmt.Errorf("get journal lines: %w", err)
	}
	defer rows.Close()

	lines := make([]ledger.JournalLine, 0)
	for rows.Next() {
		var l ledger.JournalLine
		var sub, tax, partner sql.NullString
		var amount int64
		var taxAmount sql.NullInt64
		if err := rows.Scan(&l.LineNumber, &l.Side, &l.AccountID, &l.AccountCode, &sub, &tax, &partner, &amount, &taxAmount, &l.Description); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		l.SubAccountID, l.TaxTypeID, l.PartnerID = sub.String, tax.String, partner.String
		l.Amount = ledger.FromCents(amount)
		if taxAmount.Valid {
			l.TaxAmount = decimal.NewNullDecimal(ledger.FromCents(taxAmount.Int64))
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanJournal(row scanner) (*ledger.Journal, error) {
	var j ledger.Journal
	var date, createdAt, updatedAt string
	err := row.Scan(&j.ID, &j.CompanyID, &j.FiscalPeriodID, &j.Number, &date, &j.Description, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrJournalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	if j.Date, err = parseDate("journal_date", date); err != nil {
		return nil, fmt.Errorf("journal %s: %w", j.Number, err)
	}
	if j.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("journal %s: %w", j.Number, err)
	}
	if j.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, fmt.Errorf("journal %s: %w", j.Number, err)
	}
	return &j, nil
}
