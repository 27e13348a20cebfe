package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type taxTypeRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom string          `json:"effective_from"`
	EffectiveTo   string          `json:"effective_to,omitempty"`
}

func (req taxTypeRequest) taxType(cid string) (*ledger.TaxType, error) {
	from, err := ledger.ParseDate(req.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	to, err := optionalDate(req.EffectiveTo)
	if err != nil {
		return nil, err
	}
	return &ledger.TaxType{
		CompanyID:     cid,
		Code:          req.Code,
		Name:          req.Name,
		Rate:          req.Rate,
		EffectiveFrom: from,
		EffectiveTo:   to,
	}, nil
}

func (s *Server) createTaxType(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	var req taxTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	t, err := req.taxType(cid)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.store.CreateTaxType(r.Context(), t); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// listTaxTypes returns all tax types, or only those effective on ?effective=YYYY-MM-DD.
func (s *Server) listTaxTypes(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	on, err := queryDate(r, "effective", time.Time{})
	if err != nil {
		writeFailure(w, err)
		return
	}

	types, err := s.store.ListTaxTypes(r.Context(), cid, on)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if types == nil {
		types = []ledger.TaxType{}
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) updateTaxType(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	var req taxTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	t, err := req.taxType(cid)
	if err != nil {
		writeFailure(w, err)
		return
	}
	t.ID = chi.URLParam(r, "id")
	if err := s.store.UpdateTaxType(r.Context(), t); err != nil {
		writeFailure(w, err)
		return
	}
	updated, err := s.store.GetTaxType(r.Context(), cid, t.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTaxType(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	if err := s.store.DeleteTaxType(r.Context(), cid, chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
