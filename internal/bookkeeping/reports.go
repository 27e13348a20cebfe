package bookkeeping

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

// GeneralLedger reports one account over [start, end]. account may be an id or a code.
func (s *Service) GeneralLedger(ctx context.Context, companyID, account string, start, end time.Time) (*ledger.GeneralLedger, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}
	acct, err := s.account(ctx, companyID, account)
	if err != nil {
		return nil, err
	}

	upTo := end
	if start.After(end) {
		upTo = start
	}
	lines, err := s.store.LinesForAccount(ctx, companyID, acct.ID, ledger.DateRange{To: upTo})
	if err != nil {
		return nil, err
	}
	return ledger.BuildGeneralLedger(*acct, start, end, lines), nil
}

// TrialBalance lists every account's balance as of asOf. An imbalance is logged
// and returned in the report, never corrected.
func (s *Service) TrialBalance(ctx context.Context, companyID string, asOf time.Time) (*ledger.TrialBalance, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}
	lines, err := s.store.LinesForCompany(ctx, companyID, ledger.DateRange{To: asOf})
	if err != nil {
		return nil, err
	}

	tb := ledger.BuildTrialBalance(asOf, lines)
	if !tb.Balanced {
		s.log.Warn("trial balance does not balance",
			zap.String("company", companyID),
			zap.String("as_of", ledger.FormatDate(asOf)),
			zap.String("debit", tb.TotalDebit.StringFixed(ledger.AmountScale)),
			zap.String("credit", tb.TotalCredit.StringFixed(ledger.AmountScale)),
		)
	}
	return tb, nil
}

func (s *Service) ProfitLoss(ctx context.Context, companyID string, start, end time.Time) (*ledger.ProfitLoss, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}
	lines, err := s.store.LinesForCompany(ctx, companyID, ledger.DateRange{From: start, To: end})
	if err != nil {
		return nil, err
	}
	return ledger.BuildProfitLoss(start, end, lines), nil
}

// BalanceSheet reports assets, liabilities and equity as of asOf plus the net
// profit since the start of the containing period.
func (s *Service) BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*ledger.BalanceSheet, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}

	containing, err := s.store.PeriodContaining(ctx, companyID, asOf)
	if errors.Is(err, ledger.ErrNoFiscalPeriod) {
		containing, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.store.LinesForCompany(ctx, companyID, ledger.DateRange{To: asOf})
	if err != nil {
		return nil, err
	}

	bs := ledger.BuildBalanceSheet(asOf, containing, lines)
	if !bs.Difference.IsZero() {
		s.log.Warn("balance sheet does not reconcile",
			zap.String("company", companyID),
			zap.String("as_of", ledger.FormatDate(asOf)),
			zap.String("difference", bs.Difference.StringFixed(ledger.AmountScale)),
		)
	}
	return bs, nil
}
