package bookkeeping

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/store"
)

func (s *Service) ListPeriods(ctx context.Context, companyID string) ([]ledger.FiscalPeriod, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}
	return s.store.ListPeriods(ctx, companyID)
}

// CreatePeriod adds a period after checking its range against the company's others.
func (s *Service) CreatePeriod(ctx context.Context, companyID string, p *ledger.FiscalPeriod) error {
	if _, err := s.company(ctx, companyID); err != nil {
		return err
	}
	p.ID = ""
	p.CompanyID = companyID
	p.Closed = false
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.checkOverlap(ctx, p); err != nil {
		return err
	}
	if err := s.store.CreatePeriod(ctx, p); err != nil {
		return err
	}
	s.log.Info("period created", zap.String("company", companyID), zap.String("period", p.Name),
		zap.String("start", ledger.FormatDate(p.StartDate)), zap.String("end", ledger.FormatDate(p.EndDate)))
	return nil
}

// UpdatePeriod changes an open period. The new range may not overlap another
// period nor leave any of the period's journals outside it.
func (s *Service) UpdatePeriod(ctx context.Context, companyID, id string, p *ledger.FiscalPeriod) error {
	current, err := s.store.GetPeriod(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := current.CheckOpen(); err != nil {
		return err
	}

	p.ID = id
	p.CompanyID = companyID
	p.Closed = current.Closed
	p.CreatedAt = current.CreatedAt
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.checkOverlap(ctx, p); err != nil {
		return err
	}

	journals, err := s.store.ListJournals(ctx, companyID, store.JournalFilter{})
	if err != nil {
		return err
	}
	for _, j := range journals {
		if j.FiscalPeriodID == id && !p.Contains(j.Date) {
			return fmt.Errorf("%w: journal %s dated %s would fall outside the period",
				ledger.ErrPeriodInUse, j.Number, ledger.FormatDate(j.Date))
		}
	}

	if err := s.store.UpdatePeriod(ctx, p); err != nil {
		return err
	}
	s.log.Info("period updated", zap.String("company", companyID), zap.String("period", p.Name))
	return nil
}

func (s *Service) DeletePeriod(ctx context.Context, companyID, id string) error {
	current, err := s.store.GetPeriod(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := current.CheckOpen(); err != nil {
		return err
	}
	return s.store.DeletePeriod(ctx, companyID, id)
}

// ClosePeriod moves a period to CLOSED. Journals in it can no longer be posted,
// replaced or deleted until it is reopened.
func (s *Service) ClosePeriod(ctx context.Context, companyID, id string) (*ledger.FiscalPeriod, error) {
	return s.transition(ctx, companyID, id, (*ledger.FiscalPeriod).Close, "period closed")
}

func (s *Service) ReopenPeriod(ctx context.Context, companyID, id string) (*ledger.FiscalPeriod, error) {
	return s.transition(ctx, companyID, id, (*ledger.FiscalPeriod).Reopen, "period reopened")
}

func (s *Service) transition(ctx context.Context, companyID, id string, apply func(*ledger.FiscalPeriod) error, msg string) (*ledger.FiscalPeriod, error) {
	p, err := s.store.GetPeriod(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.store.SetPeriodClosed(ctx, companyID, id, p.Closed); err != nil {
		return nil, err
	}
	s.log.Info(msg, zap.String("company", companyID), zap.String("period", p.Name))
	return p, nil
}

func (s *Service) checkOverlap(ctx context.Context, p *ledger.FiscalPeriod) error {
	existing, err := s.store.OverlappingPeriods(ctx, p.CompanyID, ledger.DateRange{From: p.StartDate, To: p.EndDate})
	if err != nil {
		return err
	}
	return ledger.CheckNoOverlap(*p, existing)
}
