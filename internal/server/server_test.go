package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/bookkeeper/internal/bookkeeping"
	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/store"
)

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := New(st, bookkeeping.New(st, nil), nil, "")
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv}
}

func (a *testAPI) do(method, path string, body any, out any) int {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.srv.URL+"/api/v1"+path, rdr)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// setupCompany creates a company with the default chart and a January 2025 period.
func (a *testAPI) setupCompany() (cid, periodID string) {
	var c ledger.Company
	require.Equal(a.t, http.StatusCreated, a.do("POST", "/companies", map[string]any{"code": "ACME", "name": "Acme"}, &c))

	var p ledger.FiscalPeriod
	require.Equal(a.t, http.StatusCreated, a.do("POST", "/companies/"+c.ID+"/periods", map[string]any{
		"period_year": 2025, "period_number": 1, "period_name": "2025-01",
		"start_date": "2025-01-01", "end_date": "2025-01-31",
	}, &p))
	return c.ID, p.ID
}

func journalBody(number, date, debit, credit string) map[string]any {
	return map[string]any{
		"journal_number": number,
		"journal_date":   date,
		"description":    "test",
		"lines": []map[string]any{
			{"side": "DEBIT", "account_code": "1000", "amount": debit},
			{"side": "credit", "account_code": "3000", "amount": credit},
		},
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, api.do("GET", "/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPostAndReport(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	var j ledger.Journal
	require.Equal(t, http.StatusCreated, api.do("POST", "/companies/"+cid+"/journals",
		journalBody("J-1", "2025-01-10", "1000.00", "1000.00"), &j))
	assert.Equal(t, "J-1", j.Number)
	require.Len(t, j.Lines, 2)
	assert.Equal(t, "1000", j.Lines[0].AccountCode)
	assert.Equal(t, ledger.Credit, j.Lines[1].Side)

	var gl ledger.GeneralLedger
	require.Equal(t, http.StatusOK, api.do("GET",
		"/companies/"+cid+"/reports/general-ledger?account=1000&from=2025-01-01&to=2025-01-31", nil, &gl))
	assert.Equal(t, "0.00", gl.OpeningBalance.StringFixed(2))
	require.Len(t, gl.Entries, 1)
	assert.Equal(t, "1000.00", gl.ClosingBalance.StringFixed(2))

	var tb ledger.TrialBalance
	require.Equal(t, http.StatusOK, api.do("GET", "/companies/"+cid+"/reports/trial-balance?as_of=2025-01-31", nil, &tb))
	assert.True(t, tb.Balanced)
	assert.Len(t, tb.Entries, 2)

	var bs ledger.BalanceSheet
	require.Equal(t, http.StatusOK, api.do("GET", "/companies/"+cid+"/reports/balance-sheet?as_of=2025-01-31", nil, &bs))
	assert.Equal(t, "1000.00", bs.Assets.StringFixed(2))
	assert.True(t, bs.Difference.IsZero())

	var pl ledger.ProfitLoss
	require.Equal(t, http.StatusOK, api.do("GET", "/companies/"+cid+"/reports/profit-loss?from=2025-01-01&to=2025-01-31", nil, &pl))
	assert.True(t, pl.NetProfit.IsZero())
}

func TestImbalanceResponseCarriesTotals(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	var e map[string]any
	status := api.do("POST", "/companies/"+cid+"/journals", journalBody("J-1", "2025-01-10", "500", "400"), &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "500", e["debit_total"])
	assert.Equal(t, "400", e["credit_total"])
	assert.Contains(t, e["error"], "do not balance")
}

func TestInvalidLineResponseNamesLine(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	var e map[string]any
	status := api.do("POST", "/companies/"+cid+"/journals", journalBody("J-1", "2025-01-10", "0", "0"), &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.EqualValues(t, 1, e["line_number"])
}

func TestClosedPeriodConflict(t *testing.T) {
	api := newTestAPI(t)
	cid, pid := api.setupCompany()

	var p ledger.FiscalPeriod
	require.Equal(t, http.StatusOK, api.do("POST", "/companies/"+cid+"/periods/"+pid+"/close", nil, &p))
	assert.True(t, p.Closed)
	assert.Equal(t, http.StatusConflict, api.do("POST", "/companies/"+cid+"/periods/"+pid+"/close", nil, nil))

	assert.Equal(t, http.StatusConflict, api.do("POST", "/companies/"+cid+"/journals",
		journalBody("J-1", "2025-01-10", "1", "1"), nil))

	require.Equal(t, http.StatusOK, api.do("POST", "/companies/"+cid+"/periods/"+pid+"/reopen", nil, &p))
	assert.False(t, p.Closed)
	assert.Equal(t, http.StatusCreated, api.do("POST", "/companies/"+cid+"/journals",
		journalBody("J-1", "2025-01-10", "1", "1"), nil))
}

func TestNotFoundAndBadInput(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	assert.Equal(t, http.StatusNotFound, api.do("GET", "/companies/nope", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/companies/nope/accounts", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/companies/"+cid+"/journals/nope", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("GET",
		"/companies/"+cid+"/reports/general-ledger?account=9999", nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do("GET",
		"/companies/"+cid+"/reports/trial-balance?as_of=31/01/2025", nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do("POST", "/companies/"+cid+"/journals",
		journalBody("J-1", "2025-03-10", "1", "1"), nil), "no fiscal period")
	assert.Equal(t, http.StatusBadRequest, api.do("POST", "/companies/"+cid+"/accounts",
		map[string]any{"code": "1999", "name": "Odd", "type": "ODD"}, nil))
}

func TestAccountLifecycle(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	var acct ledger.Account
	require.Equal(t, http.StatusCreated, api.do("POST", "/companies/"+cid+"/accounts",
		map[string]any{"code": "1300", "name": "Prepaid", "type": "asset"}, &acct))
	assert.Equal(t, ledger.AccountTypeAsset, acct.Type)

	assert.Equal(t, http.StatusConflict, api.do("POST", "/companies/"+cid+"/accounts",
		map[string]any{"code": "1300", "name": "Dup", "type": "ASSET"}, nil))

	require.Equal(t, http.StatusOK, api.do("PATCH", "/companies/"+cid+"/accounts/1300",
		map[string]any{"type": "EXPENSE"}, &acct))
	assert.Equal(t, ledger.AccountTypeExpense, acct.Type)

	assert.Equal(t, http.StatusConflict, api.do("PATCH", "/companies/"+cid+"/accounts/1000",
		map[string]any{"type": "EXPENSE"}, nil), "system account type is fixed")

	var sub ledger.SubAccount
	require.Equal(t, http.StatusCreated, api.do("POST", "/companies/"+cid+"/accounts/1010/sub-accounts",
		map[string]any{"code": "MUFG", "name": "MUFG Bank"}, &sub))
	var subs []ledger.SubAccount
	require.Equal(t, http.StatusOK, api.do("GET", "/companies/"+cid+"/accounts/1010/sub-accounts", nil, &subs))
	assert.Len(t, subs, 1)

	assert.Equal(t, http.StatusNoContent, api.do("DELETE", "/companies/"+cid+"/accounts/1300", nil, nil))
}

func TestTaxTypeRoutes(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	var tt ledger.TaxType
	require.Equal(t, http.StatusCreated, api.do("POST", "/companies/"+cid+"/tax-types", map[string]any{
		"code": "VAT", "name": "VAT", "rate": "10", "effective_from": "2025-01-01", "effective_to": "2025-12-31",
	}, &tt))

	var list []ledger.TaxType
	require.Equal(t, http.StatusOK, api.do("GET", "/companies/"+cid+"/tax-types?effective=2026-01-01", nil, &list))
	assert.Empty(t, list)

	assert.Equal(t, http.StatusBadRequest, api.do("PUT", "/companies/"+cid+"/tax-types/"+tt.ID, map[string]any{
		"code": "VAT", "name": "VAT", "rate": "120", "effective_from": "2025-01-01",
	}, nil))
	assert.Equal(t, http.StatusNoContent, api.do("DELETE", "/companies/"+cid+"/tax-types/"+tt.ID, nil, nil))
}

func TestCompanyAddressedByCode(t *testing.T) {
	api := newTestAPI(t)
	cid, _ := api.setupCompany()

	var c ledger.Company
	require.Equal(t, http.StatusOK, api.do("GET", "/companies/ACME", nil, &c))
	assert.Equal(t, cid, c.ID)

	var j ledger.Journal
	require.Equal(t, http.StatusCreated, api.do("POST", "/companies/ACME/journals",
		journalBody("J-1", "2025-01-10", "10", "10"), &j))
	assert.Equal(t, cid, j.CompanyID)

	var e map[string]any
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/companies/NOPE/accounts", nil, &e))
}
