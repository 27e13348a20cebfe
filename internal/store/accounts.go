package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

const accountColumns = `id, company_id, code, name, type, is_system, created_at`

func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	if acct.ID == "" {
		acct.ID = newID()
	}
	acct.CreatedAt = time.Now().UTC()

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO accounts (id, company_id, code, name, type, is_system, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.CompanyID, acct.Code, acct.Name, string(acct.Type), boolToInt(acct.IsSystem), formatTimestamp(acct.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", translate(err, ledger.ErrDuplicateAccount))
	}
	return nil
}

// GetAccount looks an account up within a company, so ids from another tenant are not found.
func (s *Store) GetAccount(ctx context.Context, companyID, id string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id = ? AND id = ?`, companyID, id)
	return scanAccount(row)
}

func (s *Store) GetAccountByCode(ctx context.Context, companyID, code string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id = ? AND code = ?`, companyID, code)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, companyID string, filter AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = ?`
	args := []any{companyID}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.IsSystem != nil {
		query += ` AND is_system = ?`
		args = append(args, boolToInt(*filter.IsSystem))
	}

	query += ` ORDER BY code`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

// UpdateAccount saves name and type. Type changes on system accounts are refused.
func (s *Store) UpdateAccount(ctx context.Context, acct *ledger.Account) error {
	current, err := s.GetAccount(ctx, acct.CompanyID, acct.ID)
	if err != nil {
		return err
	}
	if err := current.ChangeType(acct.Type); err != nil {
		return err
	}
	current.Name = acct.Name
	if err := current.Validate(); err != nil {
		return err
	}

	_, err = s.writer.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ? WHERE company_id = ? AND id = ?`,
		current.Name, string(current.Type), current.CompanyID, current.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	*acct = *current
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, companyID, id string) error {
	if _, err := s.GetAccount(ctx, companyID, id); err != nil {
		return err
	}

	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_lines WHERE account_id = ?`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check lines: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d lines", ledger.ErrAccountInUse, count)
	}

	_, err = s.writer.ExecContext(ctx, `DELETE FROM accounts WHERE company_id = ? AND id = ?`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func scanAccount(row scanner) (*ledger.Account, error) {
	var acct ledger.Account
	var isSystem int
	var createdAt string
	err := row.Scan(&acct.ID, &acct.CompanyID, &acct.Code, &acct.Name, &acct.Type, &isSystem, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	acct.IsSystem = isSystem == 1
	if acct.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("account %s: %w", acct.Code, err)
	}
	return &acct, nil
}

func (s *Store) CreateSubAccount(ctx context.Context, sub *ledger.SubAccount) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if sub.ID == "" {
		sub.ID = newID()
	}
	sub.CreatedAt = time.Now().UTC()

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO sub_accounts (id, account_id, code, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.AccountID, sub.Code, sub.Name, formatTimestamp(sub.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert sub-account: %w", translate(err, ledger.ErrDuplicateCode))
	}
	return nil
}

func (s *Store) GetSubAccount(ctx context.Context, accountID, id string) (*ledger.SubAccount, error) {
	var sub ledger.SubAccount
	var createdAt string
	err := s.reader.QueryRowContext(ctx,
		`SELECT id, account_id, code, name, created_at FROM sub_accounts WHERE account_id = ? AND id = ?`,
		accountID, id,
	).Scan(&sub.ID, &sub.AccountID, &sub.Code, &sub.Name, &createdAt)
	if err != nil {
		return nil, notFound(err, ledger.ErrSubAccountNotFound)
	}
	if sub.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("sub-account %s: %w", sub.Code, err)
	}
	return &sub, nil
}

func (s *Store) ListSubAccounts(ctx context.Context, accountID string) ([]ledger.SubAccount, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, account_id, code, name, created_at FROM sub_accounts WHERE account_id = ? ORDER BY code`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list sub-accounts: %w", err)
	}
	defer rows.Close()

	var subs []ledger.SubAccount
	for rows.Next() {
		var sub ledger.SubAccount
		var createdAt string
		if err := rows.Scan(&sub.ID, &sub.AccountID, &sub.Code, &sub.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan sub-account: %w", err)
		}
		created, err := parseTimestamp("created_at", createdAt)
		if err != nil {
			return nil, fmt.Errorf("sub-account %s: %w", sub.Code, err)
		}
		sub.CreatedAt = created
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) CreatePartner(ctx context.Context, p *ledger.Partner) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO partners (id, company_id, code, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Code, p.Name, formatTimestamp(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert partner: %w", translate(err, ledger.ErrDuplicateCode))
	}
	return nil
}

func (s *Store) GetPartner(ctx context.Context, companyID, id string) (*ledger.Partner, error) {
	var p ledger.Partner
	var createdAt string
	err := s.reader.QueryRowContext(ctx,
		`SELECT id, company_id, code, name, created_at FROM partners WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name, &createdAt)
	if err != nil {
		return nil, notFound(err, ledger.ErrPartnerNotFound)
	}
	if p.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, fmt.Errorf("partner %s: %w", p.Code, err)
	}
	return &p, nil
}

func (s *Store) ListPartners(ctx context.Context, companyID string) ([]ledger.Partner, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, company_id, code, name, created_at FROM partners WHERE company_id = ? ORDER BY code`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var partners []ledger.Partner
	for rows.Next() {
		var p ledger.Partner
		var createdAt string
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		created, err := parseTimestamp("created_at", createdAt)
		if err != nil {
			return nil, fmt.Errorf("partner %s: %w", p.Code, err)
		}
		p.CreatedAt = created
		partners = append(partners, p)
	}
	return partners, rows.Err()
}
