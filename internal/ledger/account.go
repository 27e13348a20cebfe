package ledger

import (
	"fmt"
	"strings"
	"time"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

var AllAccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// Side is the entry side of a journal line.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

func (s Side) Valid() bool {
	return s == Debit || s == Credit
}

// ParseAccountType accepts the type name in any case.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
	return t, nil
}

func (t AccountType) Valid() bool {
	for _, at := range AllAccountTypes {
		if at == t {
			return true
		}
	}
	return false
}

// NormalSide returns the side whose entries increase an account of this type.
// Assets and expenses are debit-normal; liabilities, equity and revenue are credit-normal.
func (t AccountType) NormalSide() Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return Debit
	default:
		return Credit
	}
}

// Label returns a human-readable label for the type.
func (t AccountType) Label() string {
	switch t {
	case AccountTypeAsset:
		return "Assets"
	case AccountTypeLiability:
		return "Liabilities"
	case AccountTypeEquity:
		return "Equity"
	case AccountTypeRevenue:
		return "Revenue"
	case AccountTypeExpense:
		return "Expenses"
	default:
		return string(t)
	}
}

type Company struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	FiscalYearEndMonth int       `json:"fiscal_year_end_month"`
	CreatedAt          time.Time `json:"created_at"`
}

func (c *Company) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: company code is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if c.FiscalYearEndMonth == 0 {
		c.FiscalYearEndMonth = 12
	}
	if c.FiscalYearEndMonth < 1 || c.FiscalYearEndMonth > 12 {
		return fmt.Errorf("%w: fiscal year end month must be 1-12, got %d", ErrInvalidInput, c.FiscalYearEndMonth)
	}
	return nil
}

type Account struct {
	ID        string      `json:"id"`
	CompanyID string      `json:"company_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	IsSystem  bool        `json:"is_system"`
	CreatedAt time.Time   `json:"created_at"`
}

// Validate checks all account invariants except code uniqueness, which the store enforces.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidAccountCode)
	}
	if len(a.Code) > 50 {
		return fmt.Errorf("%w: %q is longer than 50 characters", ErrInvalidAccountCode, a.Code)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	return nil
}

// ChangeType applies a type change, refusing it for system accounts.
func (a *Account) ChangeType(t AccountType) error {
	if t == a.Type {
		return nil
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, t)
	}
	if a.IsSystem {
		return fmt.Errorf("%w: %s", ErrSystemAccountType, a.Code)
	}
	a.Type = t
	return nil
}

// SubAccount refines an account, e.g. one bank deposit account per bank.
type SubAccount struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Partner is a counterparty (customer or supplier) referenced by journal lines.
type Partner struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func validateCodeName(kind, code, name string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: %s code is required", ErrInvalidInput, kind)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidInput, kind)
	}
	return nil
}

func (s *SubAccount) Validate() error { return validateCodeName("sub-account", s.Code, s.Name) }

func (p *Partner) Validate() error { return validateCodeName("partner", p.Code, p.Name) }
