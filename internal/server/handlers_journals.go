package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type journalRequest struct {
	Number      string        `json:"journal_number"`
	Date        string        `json:"journal_date"`
	Description string        `json:"description"`
	Lines       []lineRequest `json:"lines"`
}

// lineRequest names its account by account_id or account_code. A zero
// line_number takes the line's position in the list.
type lineRequest struct {
	LineNumber   int                 `json:"line_number"`
	Side         string              `json:"side"`
	AccountID    string              `json:"account_id"`
	AccountCode  string              `json:"account_code"`
	SubAccountID string              `json:"sub_account_id"`
	TaxTypeID    string              `json:"tax_type_id"`
	PartnerID    string              `json:"partner_id"`
	Amount       decimal.Decimal     `json:"amount"`
	TaxAmount    decimal.NullDecimal `json:"tax_amount"`
	Description  string              `json:"description"`
}

func (req journalRequest) journal() (*ledger.Journal, error) {
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	j := &ledger.Journal{
		Number:      strings.TrimSpace(req.Number),
		Date:        date,
		Description: req.Description,
		Lines:       make([]ledger.JournalLine, 0, len(req.Lines)),
	}
	for i, l := range req.Lines {
		n := l.LineNumber
		if n == 0 {
			n = i + 1
		}
		j.Lines = append(j.Lines, ledger.JournalLine{
			LineNumber:   n,
			Side:         ledger.Side(strings.ToUpper(l.Side)),
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			SubAccountID: l.SubAccountID,
			TaxTypeID:    l.TaxTypeID,
			PartnerID:    l.PartnerID,
			Amount:       l.Amount,
			TaxAmount:    l.TaxAmount,
			Description:  l.Description,
		})
	}
	return j, nil
}

func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	j, err := req.journal()
	if err != nil {
		writeFailure(w, err)
		return
	}

	cid := companyID(r)
	if err := s.books.PostJournal(r.Context(), cid, j); err != nil {
		writeFailure(w, err)
		return
	}

	// Fetch back to return stored amounts and resolved account codes
	created, err := s.books.GetJournal(r.Context(), cid, j.ID)
	if err != nil {
		writeJSON(w, http.StatusCreated, j)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from", time.Time{})
	if err != nil {
		writeFailure(w, err)
		return
	}
	to, err := queryDate(r, "to", time.Time{})
	if err != nil {
		writeFailure(w, err)
		return
	}

	journals, err := s.books.ListJournals(r.Context(), companyID(r), ledger.DateRange{From: from, To: to})
	if err != nil {
		writeFailure(w, err)
		return
	}
	if journals == nil {
		journals = []ledger.Journal{}
	}
	writeJSON(w, http.StatusOK, journals)
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	j, err := s.books.GetJournal(r.Context(), companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) replaceJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	j, err := req.journal()
	if err != nil {
		writeFailure(w, err)
		return
	}

	cid, id := companyID(r), chi.URLParam(r, "id")
	if err := s.books.ReplaceJournal(r.Context(), cid, id, j); err != nil {
		writeFailure(w, err)
		return
	}
	updated, err := s.books.GetJournal(r.Context(), cid, id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := s.books.DeleteJournal(r.Context(), companyID(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
