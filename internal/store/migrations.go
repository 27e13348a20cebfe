package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	if version < 2 {
		if err := migrateV2(ctx, tx); err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id                    TEXT PRIMARY KEY,
			code                  TEXT NOT NULL UNIQUE,
			name                  TEXT NOT NULL,
			fiscal_year_end_month INTEGER NOT NULL DEFAULT 12 CHECK (fiscal_year_end_month BETWEEN 1 AND 12),
			created_at            TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id         TEXT PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			code       TEXT NOT NULL,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL CHECK (type IN ('ASSET','LIABILITY','EQUITY','REVENUE','EXPENSE')),
			is_system  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (company_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS sub_accounts (
			id         TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			code       TEXT NOT NULL,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (account_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS partners (
			id         TEXT PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			code       TEXT NOT NULL,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (company_id, code)
		)`,

		// Rate is kept as decimal text so no precision is lost.
		`CREATE TABLE IF NOT EXISTS tax_types (
			id             TEXT PRIMARY KEY,
			company_id     TEXT NOT NULL REFERENCES companies(id),
			code           TEXT NOT NULL,
			name           TEXT NOT NULL,
			rate           TEXT NOT NULL,
			effective_from TEXT NOT NULL,
			effective_to   TEXT,
			created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (company_id, code),
			CHECK (effective_to IS NULL OR effective_to >= effective_from)
		)`,

		`CREATE TABLE IF NOT EXISTS fiscal_periods (
			id            TEXT PRIMARY KEY,
			company_id    TEXT NOT NULL REFERENCES companies(id),
			period_year   INTEGER NOT NULL,
			period_number INTEGER NOT NULL,
			name          TEXT NOT NULL,
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			closed        INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (company_id, period_year, period_number),
			CHECK (end_date >= start_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_periods_range ON fiscal_periods(company_id, start_date, end_date)`,

		// seq records creation order and breaks ties between journals on the same date.
		`CREATE TABLE IF NOT EXISTS journals (
			id               TEXT PRIMARY KEY,
			company_id       TEXT NOT NULL REFERENCES companies(id),
			fiscal_period_id TEXT NOT NULL REFERENCES fiscal_periods(id),
			seq              INTEGER NOT NULL,
			journal_number   TEXT NOT NULL,
			journal_date     TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			finalized        INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (company_id, journal_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journals_date ON journals(company_id, journal_date, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_journals_period ON journals(fiscal_period_id)`,

		// Amounts are integer cents.
		`CREATE TABLE IF NOT EXISTS journal_lines (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			journal_id     TEXT NOT NULL REFERENCES journals(id) ON DELETE CASCADE,
			line_number    INTEGER NOT NULL CHECK (line_number > 0),
			side           TEXT NOT NULL CHECK (side IN ('DEBIT','CREDIT')),
			account_id     TEXT NOT NULL REFERENCES accounts(id),
			sub_account_id TEXT REFERENCES sub_accounts(id),
			tax_type_id    TEXT REFERENCES tax_types(id),
			partner_id     TEXT REFERENCES partners(id),
			amount         INTEGER NOT NULL CHECK (amount > 0),
			tax_amount     INTEGER CHECK (tax_amount IS NULL OR tax_amount >= 0),
			description    TEXT NOT NULL DEFAULT '',
			UNIQUE (journal_id, line_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_account ON journal_lines(account_id)`,

		`CREATE TRIGGER IF NOT EXISTS trg_journal_balance
		BEFORE UPDATE OF finalized ON journals
		WHEN NEW.finalized = 1
		BEGIN
			SELECT CASE
				WHEN NOT EXISTS (SELECT 1 FROM journal_lines WHERE journal_id = NEW.id)
				  OR (SELECT SUM(CASE side WHEN 'DEBIT' THEN amount ELSE -amount END)
				      FROM journal_lines WHERE journal_id = NEW.id) != 0
				THEN RAISE(ABORT, 'journal lines do not balance')
			END;
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_journal_in_period_insert
		BEFORE INSERT ON journals
		WHEN NOT EXISTS (
			SELECT 1 FROM fiscal_periods p
			WHERE p.id = NEW.fiscal_period_id AND p.company_id = NEW.company_id
			  AND NEW.journal_date BETWEEN p.start_date AND p.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'journal date is outside its fiscal period');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_journal_in_period_update
		BEFORE UPDATE OF journal_date, fiscal_period_id ON journals
		WHEN NOT EXISTS (
			SELECT 1 FROM fiscal_periods p
			WHERE p.id = NEW.fiscal_period_id AND p.company_id = NEW.company_id
			  AND NEW.journal_date BETWEEN p.start_date AND p.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'journal date is outside its fiscal period');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_journal_closed_insert
		BEFORE INSERT ON journals
		WHEN (SELECT closed FROM fiscal_periods WHERE id = NEW.fiscal_period_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period is closed');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_journal_closed_update
		BEFORE UPDATE OF journal_number, journal_date, description, fiscal_period_id ON journals
		WHEN (SELECT closed FROM fiscal_periods WHERE id = OLD.fiscal_period_id) = 1
		  OR (SELECT closed FROM fiscal_periods WHERE id = NEW.fiscal_period_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period is closed');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_journal_closed_delete
		BEFORE DELETE ON journals
		WHEN (SELECT closed FROM fiscal_periods WHERE id = OLD.fiscal_period_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period is closed');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_lines_closed_insert
		BEFORE INSERT ON journal_lines
		WHEN (SELECT p.closed FROM journals j JOIN fiscal_periods p ON p.id = j.fiscal_period_id
		      WHERE j.id = NEW.journal_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period is closed');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_lines_closed_delete
		BEFORE DELETE ON journal_lines
		WHEN (SELECT p.closed FROM journals j JOIN fiscal_periods p ON p.id = j.fiscal_period_id
		      WHERE j.id = OLD.journal_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period is closed');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_lines_immutable
		BEFORE UPDATE ON journal_lines
		BEGIN
			SELECT RAISE(ABORT, 'journal lines are replaced, never updated');
		END`,

		// A closed period keeps its dates; only the closed flag may change.
		`CREATE TRIGGER IF NOT EXISTS trg_period_closed_update
		BEFORE UPDATE OF period_year, period_number, name, start_date, end_date ON fiscal_periods
		WHEN OLD.closed = 1
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period is closed');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// migrateV2 adds the period overlap backstop.
func migrateV2(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TRIGGER IF NOT EXISTS trg_period_overlap_insert
		BEFORE INSERT ON fiscal_periods
		WHEN EXISTS (
			SELECT 1 FROM fiscal_periods p
			WHERE p.company_id = NEW.company_id
			  AND p.start_date <= NEW.end_date AND NEW.start_date <= p.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period overlaps an existing period');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_period_overlap_update
		BEFORE UPDATE OF start_date, end_date ON fiscal_periods
		WHEN EXISTS (
			SELECT 1 FROM fiscal_periods p
			WHERE p.company_id = NEW.company_id AND p.id != NEW.id
			  AND p.start_date <= NEW.end_date AND NEW.start_date <= p.end_date
		)
		BEGIN
			SELECT RAISE(ABORT, 'fiscal period overlaps an existing period');
		END`,

		`INSERT INTO schema_version (version) VALUES (2)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}
