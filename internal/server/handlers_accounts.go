package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/store"
)

type createAccountRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	typ, err := ledger.ParseAccountType(req.Type)
	if err != nil {
		writeFailure(w, err)
		return
	}
	acct := &ledger.Account{CompanyID: cid, Code: req.Code, Name: req.Name, Type: typ}
	if err := s.store.CreateAccount(r.Context(), acct); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	filter := store.AccountFilter{}

	if t := r.URL.Query().Get("type"); t != "" {
		typ, err := ledger.ParseAccountType(t)
		if err != nil {
			writeFailure(w, err)
			return
		}
		filter.Type = typ
	}
	if sys := r.URL.Query().Get("system"); sys != "" {
		v := sys == "true" || sys == "1"
		filter.IsSystem = &v
	}

	accounts, err := s.store.ListAccounts(r.Context(), cid, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// lookupAccount resolves the {id} path value as an account id or code.
func (s *Server) lookupAccount(r *http.Request) (*ledger.Account, error) {
	cid := companyID(r)
	ref, _ := url.PathUnescape(chi.URLParam(r, "id"))
	acct, err := s.store.GetAccount(r.Context(), cid, ref)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		acct, err = s.store.GetAccountByCode(r.Context(), cid, ref)
	}
	return acct, err
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.lookupAccount(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.lookupAccount(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Name != "" {
		acct.Name = req.Name
	}
	if req.Type != "" {
		typ, err := ledger.ParseAccountType(req.Type)
		if err != nil {
			writeFailure(w, err)
			return
		}
		acct.Type = typ
	}
	if err := s.store.UpdateAccount(r.Context(), acct); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.lookupAccount(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.store.DeleteAccount(r.Context(), acct.CompanyID, acct.ID); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type codeNameRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) createSubAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.lookupAccount(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req codeNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	sub := &ledger.SubAccount{AccountID: acct.ID, Code: req.Code, Name: req.Name}
	if err := s.store.CreateSubAccount(r.Context(), sub); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) listSubAccounts(w http.ResponseWriter, r *http.Request) {
	acct, err := s.lookupAccount(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	subs, err := s.store.ListSubAccounts(r.Context(), acct.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if subs == nil {
		subs = []ledger.SubAccount{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) createPartner(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	var req codeNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p := &ledger.Partner{CompanyID: cid, Code: req.Code, Name: req.Name}
	if err := s.store.CreatePartner(r.Context(), p); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPartners(w http.ResponseWriter, r *http.Request) {
	cid := companyID(r)
	partners, err := s.store.ListPartners(r.Context(), cid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if partners == nil {
		partners = []ledger.Partner{}
	}
	writeJSON(w, http.StatusOK, partners)
}
