package store

import (
	"context"
	"fmt"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

// LinesForCompany returns every finalized line of the company within r, with the
// journal header and account already joined, in posting order.
func (s *Store) LinesForCompany(ctx context.Context, companyID string, r ledger.DateRange) ([]ledger.PostedLine, error) {
	return s.postedLines(ctx, companyID, "", r)
}

// LinesForAccount is LinesForCompany restricted to one account.
func (s *Store) LinesForAccount(ctx context.Context, companyID, accountID string, r ledger.DateRange) ([]ledger.PostedLine, error) {
	return s.postedLines(ctx, companyID, accountID, r)
}

func (s *Store) postedLines(ctx context.Context, companyID, accountID string, r ledger.DateRange) ([]ledger.PostedLine, error) {
	query := `SELECT j.id, j.seq, j.journal_number, j.description, j.journal_date,
			l.line_number, a.id, a.code, a.name, a.type, l.side, l.amount, l.description
		FROM journal_lines l
		JOIN journals j ON j.id = l.journal_id
		JOIN accounts a ON a.id = l.account_id
		WHERE j.company_id = ? AND j.finalized = 1`
	args := []any{companyID}

	if accountID != "" {
		query += ` AND l.account_id = ?`
		args = append(args, accountID)
	}
	if !r.From.IsZero() {
		query += ` AND j.journal_date >= ?`
		args = append(args, formatDate(r.From))
	}
	if !r.To.IsZero() {
		query += ` AND j.journal_date <= ?`
		args = append(args, formatDate(r.To))
	}
	query += ` ORDER BY j.journal_date, j.seq, l.line_number`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("posted lines query: %w", err)
	}
	defer rows.Close()

	var lines []ledger.PostedLine
	for rows.Next() {
		var l ledger.PostedLine
		var date string
		var amount int64
		if err := rows.Scan(&l.JournalID, &l.JournalSeq, &l.JournalNumber, &l.JournalDescription, &date,
			&l.LineNumber, &l.AccountID, &l.AccountCode, &l.AccountName, &l.AccountType, &l.Side, &amount, &l.Description); err != nil {
			return nil, fmt.Errorf("scan posted line: %w", err)
		}
		d, err := parseDate("journal_date", date)
		if err != nil {
			return nil, fmt.Errorf("posted line %d of %s: %w", l.LineNumber, l.JournalNumber, err)
		}
		l.Date = d
		l.Amount = ledger.FromCents(amount)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
