package bookkeeping

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/store"
)

// PostJournal validates j against the company's periods, resolves every line
// reference and persists it. Nothing is written unless every check passes.
func (s *Service) PostJournal(ctx context.Context, companyID string, j *ledger.Journal) error {
	if _, err := s.company(ctx, companyID); err != nil {
		return err
	}
	j.ID = ""
	j.CompanyID = companyID

	periods, err := s.store.ListPeriods(ctx, companyID)
	if err != nil {
		return err
	}
	period, err := j.Validate(periods)
	if err != nil {
		s.log.Debug("journal rejected", zap.String("company", companyID), zap.String("number", j.Number), zap.Error(err))
		return err
	}
	if err := s.resolveLines(ctx, j); err != nil {
		return err
	}
	if err := s.checkNumberFree(ctx, companyID, j.Number, ""); err != nil {
		return err
	}

	j.FiscalPeriodID = period.ID
	if err := s.store.CreateJournal(ctx, j); err != nil {
		return err
	}

	debit, _ := ledger.Totals(j.Lines)
	s.log.Info("journal posted",
		zap.String("company", companyID),
		zap.String("journal", j.ID),
		zap.String("number", j.Number),
		zap.String("date", ledger.FormatDate(j.Date)),
		zap.String("period", period.Name),
		zap.String("total", debit.StringFixed(ledger.AmountScale)),
	)
	return nil
}

// ReplaceJournal swaps the header and all lines of journal id for those of j. The
// current period and the period of the new date must both be open.
func (s *Service) ReplaceJournal(ctx context.Context, companyID, id string, j *ledger.Journal) error {
	current, err := s.store.GetJournal(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.checkJournalPeriodOpen(ctx, current); err != nil {
		return err
	}

	j.ID = id
	j.CompanyID = companyID
	j.CreatedAt = current.CreatedAt

	periods, err := s.store.ListPeriods(ctx, companyID)
	if err != nil {
		return err
	}
	period, err := j.Validate(periods)
	if err != nil {
		return err
	}
	if err := s.resolveLines(ctx, j); err != nil {
		return err
	}
	if j.Number != current.Number {
		if err := s.checkNumberFree(ctx, companyID, j.Number, id); err != nil {
			return err
		}
	}

	j.FiscalPeriodID = period.ID
	if err := s.store.ReplaceJournal(ctx, j); err != nil {
		return err
	}
	s.log.Info("journal replaced", zap.String("company", companyID), zap.String("journal", id), zap.String("number", j.Number))
	return nil
}

func (s *Service) DeleteJournal(ctx context.Context, companyID, id string) error {
	current, err := s.store.GetJournal(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.checkJournalPeriodOpen(ctx, current); err != nil {
		return err
	}
	if err := s.store.DeleteJournal(ctx, companyID, id); err != nil {
		return err
	}
	s.log.Info("journal deleted", zap.String("company", companyID), zap.String("journal", id), zap.String("number", current.Number))
	return nil
}

func (s *Service) GetJournal(ctx context.Context, companyID, id string) (*ledger.Journal, error) {
	return s.store.GetJournal(ctx, companyID, id)
}

func (s *Service) ListJournals(ctx context.Context, companyID string, r ledger.DateRange) ([]ledger.Journal, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}
	return s.store.ListJournals(ctx, companyID, store.JournalFilter{Range: r})
}

func (s *Service) checkJournalPeriodOpen(ctx context.Context, j *ledger.Journal) error {
	p, err := s.store.GetPeriod(ctx, j.CompanyID, j.FiscalPeriodID)
	if err != nil {
		return fmt.Errorf("period of journal %s: %w", j.Number, err)
	}
	return p.CheckOpen()
}

func (s *Service) checkNumberFree(ctx context.Context, companyID, number, exceptID string) error {
	existing, err := s.store.GetJournalByNumber(ctx, companyID, number)
	switch {
	case errors.Is(err, ledger.ErrJournalNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == exceptID:
		return nil
	}
	return fmt.Errorf("%w: %s", ledger.ErrDuplicateJournalNumber, number)
}

// resolveLines turns account codes into ids, checks that every referenced
// sub-account, partner and tax type belongs to the company, and fills in tax
// amounts computed from the tax type's rate where none was given.
func (s *Service) resolveLines(ctx context.Context, j *ledger.Journal) error {
	for i := range j.Lines {
		l := &j.Lines[i]

		ref := l.AccountID
		if ref == "" {
			ref = l.AccountCode
		}
		acct, err := s.account(ctx, j.CompanyID, ref)
		if err != nil {
			return fmt.Errorf("line %d: %w: %s", l.LineNumber, err, ref)
		}
		l.AccountID, l.AccountCode = acct.ID, acct.Code

		if l.SubAccountID != "" {
			if _, err := s.store.GetSubAccount(ctx, acct.ID, l.SubAccountID); err != nil {
				return fmt.Errorf("line %d: %w", l.LineNumber, err)
			}
		}
		if l.PartnerID != "" {
			if _, err := s.store.GetPartner(ctx, j.CompanyID, l.PartnerID); err != nil {
				return fmt.Errorf("line %d: %w", l.LineNumber, err)
			}
		}
		if l.TaxTypeID != "" {
			tt, err := s.store.GetTaxType(ctx, j.CompanyID, l.TaxTypeID)
			if err != nil {
				return fmt.Errorf("line %d: %w", l.LineNumber, err)
			}
			if !tt.EffectiveOn(j.Date) {
				return &ledger.InvalidLineError{
					LineNumber: l.LineNumber,
					Reason:     fmt.Sprintf("tax type %s is not effective on %s", tt.Code, ledger.FormatDate(j.Date)),
				}
			}
			if !l.TaxAmount.Valid {
				tax := ledger.ComputeTax(l.Amount, tt.Rate)
				if !ledger.InAmountRange(tax) {
					return &ledger.InvalidLineError{
						LineNumber: l.LineNumber,
						Reason:     fmt.Sprintf("computed tax %s exceeds the maximum of %s", tax, ledger.MaxAmount),
					}
				}
				l.TaxAmount = decimal.NewNullDecimal(tax)
			}
		}
	}
	return nil
}
