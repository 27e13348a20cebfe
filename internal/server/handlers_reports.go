package server

import (
	"net/http"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

// generalLedger serves ?account=&from=&to=. from defaults to 1 January of to's year
// and to defaults to today.
func (s *Server) generalLedger(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "account is required")
		return
	}
	to, err := queryDate(r, "to", today())
	if err != nil {
		writeFailure(w, err)
		return
	}
	from, err := queryDate(r, "from", ledger.NetProfitStart(to, nil))
	if err != nil {
		writeFailure(w, err)
		return
	}

	gl, err := s.books.GeneralLedger(r.Context(), companyID(r), account, from, to)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gl)
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of", today())
	if err != nil {
		writeFailure(w, err)
		return
	}
	tb, err := s.books.TrialBalance(r.Context(), companyID(r), asOf)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tb)
}

func (s *Server) profitLoss(w http.ResponseWriter, r *http.Request) {
	to, err := queryDate(r, "to", today())
	if err != nil {
		writeFailure(w, err)
		return
	}
	from, err := queryDate(r, "from", ledger.NetProfitStart(to, nil))
	if err != nil {
		writeFailure(w, err)
		return
	}
	pl, err := s.books.ProfitLoss(r.Context(), companyID(r), from, to)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of", today())
	if err != nil {
		writeFailure(w, err)
		return
	}
	bs, err := s.books.BalanceSheet(r.Context(), companyID(r), asOf)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}
