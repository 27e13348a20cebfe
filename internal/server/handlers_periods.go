package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type periodRequest struct {
	Year      int    `json:"period_year"`
	Number    int    `json:"period_number"`
	Name      string `json:"period_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (req periodRequest) period() (*ledger.FiscalPeriod, error) {
	start, err := ledger.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ledger.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	return &ledger.FiscalPeriod{
		Year:      req.Year,
		Number:    req.Number,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func (s *Server) createPeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := req.period()
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.books.CreatePeriod(r.Context(), companyID(r), p); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.books.ListPeriods(r.Context(), companyID(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if periods == nil {
		periods = []ledger.FiscalPeriod{}
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) updatePeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := req.period()
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.books.UpdatePeriod(r.Context(), companyID(r), chi.URLParam(r, "id"), p); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := s.books.DeletePeriod(r.Context(), companyID(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) closePeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.books.ClosePeriod(r.Context(), companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) reopenPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.books.ReopenPeriod(r.Context(), companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
