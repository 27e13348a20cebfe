// Package bookkeeping runs the posting and reporting workflows on top of the pure
// ledger rules and a Store.
package bookkeeping

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/store"
)

// Store is the persistence the service needs. *store.Store implements it.
type Store interface {
	GetCompany(ctx context.Context, id string) (*ledger.Company, error)

	GetAccount(ctx context.Context, companyID, id string) (*ledger.Account, error)
	GetAccountByCode(ctx context.Context, companyID, code string) (*ledger.Account, error)
	GetSubAccount(ctx context.Context, accountID, id string) (*ledger.SubAccount, error)
	GetPartner(ctx context.Context, companyID, id string) (*ledger.Partner, error)
	GetTaxType(ctx context.Context, companyID, id string) (*ledger.TaxType, error)

	GetPeriod(ctx context.Context, companyID, id string) (*ledger.FiscalPeriod, error)
	ListPeriods(ctx context.Context, companyID string) ([]ledger.FiscalPeriod, error)
	PeriodContaining(ctx context.Context, companyID string, d time.Time) (*ledger.FiscalPeriod, error)
	OverlappingPeriods(ctx context.Context, companyID string, r ledger.DateRange) ([]ledger.FiscalPeriod, error)
	CreatePeriod(ctx context.Context, p *ledger.FiscalPeriod) error
	UpdatePeriod(ctx context.Context, p *ledger.FiscalPeriod) error
	SetPeriodClosed(ctx context.Context, companyID, id string, closed bool) error
	DeletePeriod(ctx context.Context, companyID, id string) error

	GetJournal(ctx context.Context, companyID, id string) (*ledger.Journal, error)
	GetJournalByNumber(ctx context.Context, companyID, number string) (*ledger.Journal, error)
	ListJournals(ctx context.Context, companyID string, filter store.JournalFilter) ([]ledger.Journal, error)
	CreateJournal(ctx context.Context, j *ledger.Journal) error
	ReplaceJournal(ctx context.Context, j *ledger.Journal) error
	DeleteJournal(ctx context.Context, companyID, id string) error

	LinesForCompany(ctx context.Context, companyID string, r ledger.DateRange) ([]ledger.PostedLine, error)
	LinesForAccount(ctx context.Context, companyID, accountID string, r ledger.DateRange) ([]ledger.PostedLine, error)
}

type Service struct {
	store Store
	log   *zap.Logger
}

func New(st Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log.Named("bookkeeping")}
}

func (s *Service) company(ctx context.Context, companyID string) (*ledger.Company, error) {
	return s.store.GetCompany(ctx, companyID)
}

// account resolves ref as an account id first and then as an account code.
func (s *Service) account(ctx context.Context, companyID, ref string) (*ledger.Account, error) {
	acct, err := s.store.GetAccount(ctx, companyID, ref)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		acct, err = s.store.GetAccountByCode(ctx, companyID, ref)
	}
	return acct, err
}
