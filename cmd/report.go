package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Financial reports",
}

var (
	reportAccount string
	reportFrom    string
	reportTo      string
	reportAsOf    string
)

// reportRange resolves --from/--to, defaulting to today and 1 January of to's year.
func reportRange() (time.Time, time.Time, error) {
	to := ledger.Day(time.Now())
	if reportTo != "" {
		d, err := ledger.ParseDate(reportTo)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = d
	}
	from := ledger.NetProfitStart(to, nil)
	if reportFrom != "" {
		d, err := ledger.ParseDate(reportFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = d
	}
	return from, to, nil
}

func reportDate() (time.Time, error) {
	if reportAsOf == "" {
		return ledger.Day(time.Now()), nil
	}
	return ledger.ParseDate(reportAsOf)
}

var generalLedgerCmd = &cobra.Command{
	Use:     "gl",
	Aliases: []string{"general-ledger"},
	Short:   "Show the general ledger of one account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		gl, err := apiClient().GeneralLedger(context.Background(), cid, reportAccount, from, to)
		if err != nil {
			return err
		}
		printGeneralLedger(gl)
		return nil
	},
}

var trialBalanceCmd = &cobra.Command{
	Use:     "trial",
	Aliases: []string{"tb"},
	Short:   "Show trial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		asOf, err := reportDate()
		if err != nil {
			return err
		}
		tb, err := apiClient().TrialBalance(context.Background(), cid, asOf)
		if err != nil {
			return err
		}
		printTrialBalance(tb)
		return nil
	},
}

var profitLossCmd = &cobra.Command{
	Use:     "pl",
	Aliases: []string{"profit-loss"},
	Short:   "Show profit and loss",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		pl, err := apiClient().ProfitLoss(context.Background(), cid, from, to)
		if err != nil {
			return err
		}
		printProfitLoss(pl)
		return nil
	},
}

var balanceSheetCmd = &cobra.Command{
	Use:     "bs",
	Aliases: []string{"balance-sheet"},
	Short:   "Show balance sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		asOf, err := reportDate()
		if err != nil {
			return err
		}
		bs, err := apiClient().BalanceSheet(context.Background(), cid, asOf)
		if err != nil {
			return err
		}
		printBalanceSheet(bs)
		return nil
	},
}

func printGeneralLedger(gl *ledger.GeneralLedger) {
	w := 96
	fmt.Println()
	fmt.Println(center("GENERAL LEDGER", w))
	fmt.Println(center(fmt.Sprintf("%s %s", gl.AccountCode, gl.AccountName), w))
	fmt.Println(center(ledger.FormatDate(gl.StartDate)+" to "+ledger.FormatDate(gl.EndDate), w))
	fmt.Println()

	fmt.Printf("  %-10s %-12s %-30s %12s %12s %14s\n", "DATE", "JOURNAL", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-55s %12s %12s %14s\n", "Opening balance", "", "", formatSigned(gl.OpeningBalance))
	for _, e := range gl.Entries {
		fmt.Printf("  %-10s %-12s %-30s %12s %12s %14s\n",
			ledger.FormatDate(e.Date), truncate(e.JournalNumber, 12), truncate(e.Description, 30),
			blankZero(e.Debit), blankZero(e.Credit), formatSigned(e.Balance))
	}
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-55s %12s %12s %14s\n", "Closing balance",
		ledger.FormatAmount(gl.TotalDebit), ledger.FormatAmount(gl.TotalCredit), formatSigned(gl.ClosingBalance))
}

func printTrialBalance(tb *ledger.TrialBalance) {
	w := 76
	fmt.Println()
	fmt.Println(center("TRIAL BALANCE", w))
	fmt.Println(center("as of "+ledger.FormatDate(tb.AsOfDate), w))
	fmt.Println()

	fmt.Printf("  %-8s %-36s %13s %13s\n", "CODE", "NAME", "DEBIT", "CREDIT")
	fmt.Printf("  %-8s %-36s %13s %13s\n", "----", "----", "-----", "------")
	for _, e := range tb.Entries {
		fmt.Printf("  %-8s %-36s %13s %13s\n", e.AccountCode, truncate(e.AccountName, 36), blankZero(e.Debit), blankZero(e.Credit))
	}

	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-45s %13s %13s\n", "TOTALS", ledger.FormatAmount(tb.TotalDebit), ledger.FormatAmount(tb.TotalCredit))

	if tb.Balanced {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Printf("\n  [UNBALANCED! difference %s]\n", formatSigned(tb.Difference))
	}
}

func printProfitLoss(pl *ledger.ProfitLoss) {
	w := 60
	fmt.Println()
	fmt.Println(center("PROFIT AND LOSS", w))
	fmt.Println(center(ledger.FormatDate(pl.StartDate)+" to "+ledger.FormatDate(pl.EndDate), w))
	fmt.Println()

	printSection("REVENUE", pl.RevenueAccounts, w)
	printTotal("Total Revenue", pl.Revenue, "─", w)
	printSection("EXPENSES", pl.ExpenseAccounts, w)
	printTotal("Total Expenses", pl.Expense, "─", w)

	label := "Net Profit"
	if pl.NetProfit.IsNegative() {
		label = "Net Loss"
	}
	printTotal(label, pl.NetProfit, "═", w)
}

func printBalanceSheet(bs *ledger.BalanceSheet) {
	w := 60
	fmt.Println()
	fmt.Println(center("BALANCE SHEET", w))
	fmt.Println(center("as of "+ledger.FormatDate(bs.AsOfDate), w))
	fmt.Println()

	printSection("ASSETS", bs.AssetAccounts, w)
	printTotal("Total Assets", bs.Assets, "─", w)
	printSection("LIABILITIES", bs.LiabilityAccounts, w)
	printTotal("Total Liabilities", bs.Liabilities, "─", w)
	printSection("EQUITY", bs.EquityAccounts, w)
	fmt.Printf("  %-*s%15s\n", w-17, "Net profit since "+ledger.FormatDate(bs.NetProfitFrom), formatSigned(bs.NetProfit))
	printTotal("Total Equity", bs.Equity.Add(bs.NetProfit), "─", w)
	printTotal("Total L + E", bs.TotalLiabilitiesAndEquity, "═", w)

	if bs.Difference.IsZero() {
		fmt.Println("  [BALANCED]")
	} else {
		fmt.Printf("  [UNBALANCED! difference %s]\n", formatSigned(bs.Difference))
	}
}

func printSection(title string, lines []ledger.AccountAmount, w int) {
	fmt.Printf("  %s\n", title)
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	for _, l := range lines {
		fmt.Printf("  %-6s %-*s%15s\n", l.AccountCode, w-24, truncate(l.AccountName, w-24), formatSigned(l.Amount))
	}
}

func printTotal(label string, amount decimal.Decimal, rule string, w int) {
	fmt.Printf("%*s%s\n", w-13, "", strings.Repeat(rule, 13))
	fmt.Printf("%-*s%15s\n", w-15, label, formatSigned(amount))
	fmt.Println()
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func formatSigned(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "(" + ledger.FormatAmount(amount.Neg()) + ")"
	}
	return ledger.FormatAmount(amount)
}

func blankZero(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return ledger.FormatAmount(amount)
}

func init() {
	generalLedgerCmd.Flags().StringVar(&reportAccount, "account", "", "Account code or id")
	generalLedgerCmd.MarkFlagRequired("account")
	for _, c := range []*cobra.Command{generalLedgerCmd, profitLossCmd} {
		c.Flags().StringVar(&reportFrom, "from", "", "First date (YYYY-MM-DD, default 1 January)")
		c.Flags().StringVar(&reportTo, "to", "", "Last date (YYYY-MM-DD, default today)")
	}
	for _, c := range []*cobra.Command{trialBalanceCmd, balanceSheetCmd} {
		c.Flags().StringVar(&reportAsOf, "as-of", "", "Report date (YYYY-MM-DD, default today)")
	}

	reportCmd.AddCommand(generalLedgerCmd)
	reportCmd.AddCommand(trialBalanceCmd)
	reportCmd.AddCommand(profitLossCmd)
	reportCmd.AddCommand(balanceSheetCmd)
	rootCmd.AddCommand(reportCmd)
}
