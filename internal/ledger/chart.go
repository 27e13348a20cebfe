package ledger

// ChartEntry is a predefined account seeded into every new company.
type ChartEntry struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// DefaultChart is the minimal chart of accounts for a small trading company.
var DefaultChart = []ChartEntry{
	// Assets (1xxx)
	{Code: "1000", Name: "Cash", Type: AccountTypeAsset},
	{Code: "1010", Name: "Bank Deposits", Type: AccountTypeAsset},
	{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset},
	{Code: "1200", Name: "Merchandise", Type: AccountTypeAsset},

	// Liabilities (2xxx)
	{Code: "2000", Name: "Accounts Payable", Type: AccountTypeLiability},
	{Code: "2100", Name: "Accrued Liabilities", Type: AccountTypeLiability},
	{Code: "2200", Name: "Loans Payable", Type: AccountTypeLiability},

	// Equity (3xxx)
	{Code: "3000", Name: "Capital Stock", Type: AccountTypeEquity},
	{Code: "3100", Name: "Retained Earnings", Type: AccountTypeEquity},

	// Revenue (4xxx)
	{Code: "4000", Name: "Sales", Type: AccountTypeRevenue},
	{Code: "4100", Name: "Interest Income", Type: AccountTypeRevenue},

	// Expenses (5xxx)
	{Code: "5000", Name: "Purchases", Type: AccountTypeExpense},
	{Code: "5100", Name: "Salaries", Type: AccountTypeExpense},
	{Code: "5200", Name: "Rent", Type: AccountTypeExpense},
	{Code: "5300", Name: "Utilities", Type: AccountTypeExpense},
}

// LookupChartEntry finds a default chart entry by code.
func LookupChartEntry(code string) *ChartEntry {
	for i := range DefaultChart {
		if DefaultChart[i].Code == code {
			return &DefaultChart[i]
		}
	}
	return nil
}
