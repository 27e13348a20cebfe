package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func companyPath(cid string) string {
	return "/api/v1/companies/" + url.PathEscape(cid)
}

func (c *Client) CreateCompany(ctx context.Context, code, name string, fiscalYearEndMonth int, seedChart bool) (*ledger.Company, error) {
	body := map[string]any{
		"code":                  code,
		"name":                  name,
		"fiscal_year_end_month": fiscalYearEndMonth,
		"seed_chart":            seedChart,
	}
	var result ledger.Company
	if err := c.post(ctx, "/api/v1/companies", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListCompanies(ctx context.Context) ([]ledger.Company, error) {
	var result []ledger.Company
	if err := c.get(ctx, "/api/v1/companies", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetCompany(ctx context.Context, cid string) (*ledger.Company, error) {
	var result ledger.Company
	if err := c.get(ctx, companyPath(cid), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateAccount(ctx context.Context, cid, code, name string, typ ledger.AccountType) (*ledger.Account, error) {
	body := map[string]any{"code": code, "name": name, "type": typ}
	var result ledger.Account
	if err := c.post(ctx, companyPath(cid)+"/accounts", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, cid string, typ ledger.AccountType) ([]ledger.Account, error) {
	params := url.Values{}
	if typ != "" {
		params.Set("type", string(typ))
	}
	var result []ledger.Account
	if err := c.get(ctx, companyPath(cid)+"/accounts?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAccount accepts an account id or code.
func (c *Client) GetAccount(ctx context.Context, cid, ref string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, companyPath(cid)+"/accounts/"+url.PathEscape(ref), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateAccount renames and/or retypes an account. Empty values are left unchanged.
func (c *Client) UpdateAccount(ctx context.Context, cid, ref, name string, typ ledger.AccountType) (*ledger.Account, error) {
	body := map[string]any{"name": name, "type": typ}
	var result ledger.Account
	if err := c.patch(ctx, companyPath(cid)+"/accounts/"+url.PathEscape(ref), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context, cid, ref string) error {
	return c.del(ctx, companyPath(cid)+"/accounts/"+url.PathEscape(ref))
}

func (c *Client) CreateSubAccount(ctx context.Context, cid, account, code, name string) (*ledger.SubAccount, error) {
	body := map[string]any{"code": code, "name": name}
	var result ledger.SubAccount
	if err := c.post(ctx, companyPath(cid)+"/accounts/"+url.PathEscape(account)+"/sub-accounts", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListSubAccounts(ctx context.Context, cid, account string) ([]ledger.SubAccount, error) {
	var result []ledger.SubAccount
	if err := c.get(ctx, companyPath(cid)+"/accounts/"+url.PathEscape(account)+"/sub-accounts", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CreatePartner(ctx context.Context, cid, code, name string) (*ledger.Partner, error) {
	body := map[string]any{"code": code, "name": name}
	var result ledger.Partner
	if err := c.post(ctx, companyPath(cid)+"/partners", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPartners(ctx context.Context, cid string) ([]ledger.Partner, error) {
	var result []ledger.Partner
	if err := c.get(ctx, companyPath(cid)+"/partners", &result); err != nil {
		return nil, err
	}
	return result, nil
}

type TaxTypeRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom string          `json:"effective_from"`
	EffectiveTo   string          `json:"effective_to,omitempty"`
}

func (c *Client) CreateTaxType(ctx context.Context, cid string, req TaxTypeRequest) (*ledger.TaxType, error) {
	var result ledger.TaxType
	if err := c.post(ctx, companyPath(cid)+"/tax-types", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTaxTypes lists all tax types, or those effective on the given day when it is non-zero.
func (c *Client) ListTaxTypes(ctx context.Context, cid string, effective time.Time) ([]ledger.TaxType, error) {
	params := url.Values{}
	if !effective.IsZero() {
		params.Set("effective", ledger.FormatDate(effective))
	}
	var result []ledger.TaxType
	if err := c.get(ctx, companyPath(cid)+"/tax-types?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpdateTaxType(ctx context.Context, cid, id string, req TaxTypeRequest) (*ledger.TaxType, error) {
	var result ledger.TaxType
	if err := c.put(ctx, companyPath(cid)+"/tax-types/"+url.PathEscape(id), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTaxType(ctx context.Context, cid, id string) error {
	return c.del(ctx, companyPath(cid)+"/tax-types/"+url.PathEscape(id))
}

type PeriodRequest struct {
	Year      int    `json:"period_year"`
	Number    int    `json:"period_number"`
	Name      string `json:"period_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (c *Client) CreatePeriod(ctx context.Context, cid string, req PeriodRequest) (*ledger.FiscalPeriod, error) {
	var result ledger.FiscalPeriod
	if err := c.post(ctx, companyPath(cid)+"/periods", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPeriods(ctx context.Context, cid string) ([]ledger.FiscalPeriod, error) {
	var result []ledger.FiscalPeriod
	if err := c.get(ctx, companyPath(cid)+"/periods", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpdatePeriod(ctx context.Context, cid, id string, req PeriodRequest) (*ledger.FiscalPeriod, error) {
	var result ledger.FiscalPeriod
	if err := c.put(ctx, companyPath(cid)+"/periods/"+url.PathEscape(id), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeletePeriod(ctx context.Context, cid, id string) error {
	return c.del(ctx, companyPath(cid)+"/periods/"+url.PathEscape(id))
}

func (c *Client) ClosePeriod(ctx context.Context, cid, id string) (*ledger.FiscalPeriod, error) {
	var result ledger.FiscalPeriod
	if err := c.post(ctx, companyPath(cid)+"/periods/"+url.PathEscape(id)+"/close", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReopenPeriod(ctx context.Context, cid, id string) (*ledger.FiscalPeriod, error) {
	var result ledger.FiscalPeriod
	if err := c.post(ctx, companyPath(cid)+"/periods/"+url.PathEscape(id)+"/reopen", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type JournalRequest struct {
	Number      string        `json:"journal_number"`
	Date        string        `json:"journal_date"`
	Description string        `json:"description"`
	Lines       []LineRequest `json:"lines"`
}

type LineRequest struct {
	LineNumber   int                 `json:"line_number,omitempty"`
	Side         ledger.Side         `json:"side"`
	AccountID    string              `json:"account_id,omitempty"`
	AccountCode  string              `json:"account_code,omitempty"`
	SubAccountID string              `json:"sub_account_id,omitempty"`
	TaxTypeID    string              `json:"tax_type_id,omitempty"`
	PartnerID    string              `json:"partner_id,omitempty"`
	Amount       decimal.Decimal     `json:"amount"`
	TaxAmount    decimal.NullDecimal `json:"tax_amount"`
	Description  string              `json:"description,omitempty"`
}

func (c *Client) PostJournal(ctx context.Context, cid string, req JournalRequest) (*ledger.Journal, error) {
	var result ledger.Journal
	if err := c.post(ctx, companyPath(cid)+"/journals", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReplaceJournal(ctx context.Context, cid, id string, req JournalRequest) (*ledger.Journal, error) {
	var result ledger.Journal
	if err := c.put(ctx, companyPath(cid)+"/journals/"+url.PathEscape(id), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListJournals(ctx context.Context, cid string, r ledger.DateRange) ([]ledger.Journal, error) {
	params := url.Values{}
	if !r.From.IsZero() {
		params.Set("from", ledger.FormatDate(r.From))
	}
	if !r.To.IsZero() {
		params.Set("to", ledger.FormatDate(r.To))
	}
	var result []ledger.Journal
	if err := c.get(ctx, companyPath(cid)+"/journals?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetJournal(ctx context.Context, cid, id string) (*ledger.Journal, error) {
	var result ledger.Journal
	if err := c.get(ctx, companyPath(cid)+"/journals/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteJournal(ctx context.Context, cid, id string) error {
	return c.del(ctx, companyPath(cid)+"/journals/"+url.PathEscape(id))
}

func (c *Client) GeneralLedger(ctx context.Context, cid, account string, from, to time.Time) (*ledger.GeneralLedger, error) {
	params := url.Values{}
	params.Set("account", account)
	params.Set("from", ledger.FormatDate(from))
	params.Set("to", ledger.FormatDate(to))
	var result ledger.GeneralLedger
	if err := c.get(ctx, companyPath(cid)+"/reports/general-ledger?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) TrialBalance(ctx context.Context, cid string, asOf time.Time) (*ledger.TrialBalance, error) {
	var result ledger.TrialBalance
	if err := c.get(ctx, companyPath(cid)+"/reports/trial-balance?as_of="+ledger.FormatDate(asOf), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ProfitLoss(ctx context.Context, cid string, from, to time.Time) (*ledger.ProfitLoss, error) {
	params := url.Values{}
	params.Set("from", ledger.FormatDate(from))
	params.Set("to", ledger.FormatDate(to))
	var result ledger.ProfitLoss
	if err := c.get(ctx, companyPath(cid)+"/reports/profit-loss?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BalanceSheet(ctx context.Context, cid string, asOf time.Time) (*ledger.BalanceSheet, error) {
	var result ledger.BalanceSheet
	if err := c.get(ctx, companyPath(cid)+"/reports/balance-sheet?as_of="+ledger.FormatDate(asOf), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetChart(ctx context.Context) ([]ledger.ChartEntry, error) {
	var result []ledger.ChartEntry
	if err := c.get(ctx, "/api/v1/chart", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/v1/health", nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) patch(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "PATCH", path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "PUT", path, body, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "POST", path, body, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

// APIError is a non-2xx response. Line and the totals are set for journal
// validation failures.
type APIError struct {
	Status      int              `json:"-"`
	Message     string           `json:"error"`
	Line        *int             `json:"line_number,omitempty"`
	DebitTotal  *decimal.Decimal `json:"debit_total,omitempty"`
	CreditTotal *decimal.Decimal `json:"credit_total,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(bodyBytes)
		}
		return apiErr
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
