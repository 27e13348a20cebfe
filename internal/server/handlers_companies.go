package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type createCompanyRequest struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	FiscalYearEndMonth int    `json:"fiscal_year_end_month"`
	SeedChart          *bool  `json:"seed_chart,omitempty"`
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c := &ledger.Company{Code: req.Code, Name: req.Name, FiscalYearEndMonth: req.FiscalYearEndMonth}
	seed := req.SeedChart == nil || *req.SeedChart
	if err := s.store.CreateCompany(r.Context(), c, seed); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if companies == nil {
		companies = []ledger.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, companyFrom(r))
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.DefaultChart)
}

type companyKey struct{}

// withCompany resolves {cid} as a company id, then as a company code, and
// stores the company on the request context.
func (s *Server) withCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "cid")
		c, err := s.store.GetCompany(r.Context(), ref)
		if errors.Is(err, ledger.ErrCompanyNotFound) {
			c, err = s.store.GetCompanyByCode(r.Context(), ref)
		}
		if err != nil {
			writeFailure(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), companyKey{}, c)))
	})
}

func companyFrom(r *http.Request) *ledger.Company {
	return r.Context().Value(companyKey{}).(*ledger.Company)
}

func companyID(r *http.Request) string { return companyFrom(r).ID }
