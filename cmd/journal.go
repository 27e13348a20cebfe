package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

var journalCmd = &cobra.Command{
	Use:     "journal",
	Aliases: []string{"jnl"},
	Short:   "Post and inspect journals",
}

var (
	jnlNumber      string
	jnlDate        string
	jnlDescription string
	jnlLines       []string // format: "SIDE:ACCOUNT:AMOUNT[:DESCRIPTION]"
	jnlTaxes       []string // format: "LINE=TAX_TYPE_ID"
)

// parseLine parses "SIDE:ACCOUNT:AMOUNT[:DESCRIPTION]", e.g. "DEBIT:1000:250.00:float".
// ACCOUNT is an account code.
func parseLine(n int, s string) (client.LineRequest, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return client.LineRequest{}, fmt.Errorf("invalid line %q, expected SIDE:ACCOUNT:AMOUNT[:DESCRIPTION]", s)
	}
	side := ledger.Side(strings.ToUpper(parts[0]))
	switch side {
	case "DR":
		side = ledger.Debit
	case "CR":
		side = ledger.Credit
	}
	if !side.Valid() {
		return client.LineRequest{}, fmt.Errorf("invalid side %q in line %q", parts[0], s)
	}
	amount, err := ledger.ParseAmount(parts[2])
	if err != nil {
		return client.LineRequest{}, fmt.Errorf("line %q: %w", s, err)
	}
	l := client.LineRequest{LineNumber: n, Side: side, AccountCode: parts[1], Amount: amount}
	if len(parts) == 4 {
		l.Description = parts[3]
	}
	return l, nil
}

func journalRequest() (client.JournalRequest, error) {
	req := client.JournalRequest{Number: jnlNumber, Date: jnlDate, Description: jnlDescription}
	if req.Date == "" {
		req.Date = ledger.FormatDate(time.Now())
	}
	for i, s := range jnlLines {
		l, err := parseLine(i+1, s)
		if err != nil {
			return req, err
		}
		req.Lines = append(req.Lines, l)
	}
	for _, t := range jnlTaxes {
		num, id, ok := strings.Cut(t, "=")
		n, err := strconv.Atoi(num)
		if !ok || err != nil || n < 1 || n > len(req.Lines) {
			return req, fmt.Errorf("invalid tax %q, expected LINE=TAX_TYPE_ID", t)
		}
		req.Lines[n-1].TaxTypeID = id
	}
	return req, nil
}

var journalPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced journal",
	Long: "Post a journal with double-entry lines.\n" +
		"Each --line is formatted as \"SIDE:ACCOUNT:AMOUNT[:DESCRIPTION]\" (e.g. \"DEBIT:1000:250.00\").\n" +
		"Total debits must equal total credits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		req, err := journalRequest()
		if err != nil {
			return err
		}
		j, err := apiClient().PostJournal(context.Background(), cid, req)
		if err != nil {
			return err
		}
		fmt.Printf("Journal posted: %s (%s)\n", j.Number, j.ID)
		printJournalLines(j)
		return nil
	},
}

var journalReplaceCmd = &cobra.Command{
	Use:   "replace [id]",
	Short: "Replace a journal in an open period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		req, err := journalRequest()
		if err != nil {
			return err
		}
		j, err := apiClient().ReplaceJournal(context.Background(), cid, args[0], req)
		if err != nil {
			return err
		}
		fmt.Printf("Journal replaced: %s (%s)\n", j.Number, j.ID)
		printJournalLines(j)
		return nil
	},
}

var (
	jnlListFrom string
	jnlListTo   string
)

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		var r ledger.DateRange
		if jnlListFrom != "" {
			if r.From, err = ledger.ParseDate(jnlListFrom); err != nil {
				return err
			}
		}
		if jnlListTo != "" {
			if r.To, err = ledger.ParseDate(jnlListTo); err != nil {
				return err
			}
		}

		journals, err := apiClient().ListJournals(context.Background(), cid, r)
		if err != nil {
			return err
		}
		if len(journals) == 0 {
			fmt.Println("No journals found.")
			return nil
		}

		fmt.Printf("%-12s %-10s %15s %-40s %s\n", "NUMBER", "DATE", "AMOUNT", "DESCRIPTION", "ID")
		fmt.Printf("%-12s %-10s %15s %-40s %s\n", "------", "----", "------", "-----------", "--")
		for _, j := range journals {
			debit, _ := ledger.Totals(j.Lines)
			fmt.Printf("%-12s %-10s %15s %-40s %s\n",
				j.Number, ledger.FormatDate(j.Date), ledger.FormatAmount(debit), truncate(j.Description, 40), j.ID)
		}
		return nil
	},
}

var journalGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get journal details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		j, err := apiClient().GetJournal(context.Background(), cid, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", j.ID)
		fmt.Printf("Number:      %s\n", j.Number)
		fmt.Printf("Date:        %s\n", ledger.FormatDate(j.Date))
		fmt.Printf("Description: %s\n", j.Description)
		fmt.Printf("Period:      %s\n", j.FiscalPeriodID)
		printJournalLines(j)
		return nil
	},
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a journal in an open period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		if err := apiClient().DeleteJournal(context.Background(), cid, args[0]); err != nil {
			return err
		}
		fmt.Printf("Journal deleted: %s\n", args[0])
		return nil
	},
}

func printJournalLines(j *ledger.Journal) {
	fmt.Printf("  %-3s %-4s %-8s %15s %12s %s\n", "#", "TYPE", "ACCOUNT", "AMOUNT", "TAX", "DESCRIPTION")
	for _, l := range j.Lines {
		direction := "DR"
		if l.Side == ledger.Credit {
			direction = "CR"
		}
		tax := ""
		if l.TaxAmount.Valid {
			tax = ledger.FormatAmount(l.TaxAmount.Decimal)
		}
		fmt.Printf("  %-3d %-4s %-8s %15s %12s %s\n",
			l.LineNumber, direction, l.AccountCode, ledger.FormatAmount(l.Amount), tax, l.Description)
	}
}

func journalFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&jnlNumber, "number", "", "Journal number, unique per company")
	cmd.Flags().StringVar(&jnlDate, "date", "", "Journal date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&jnlDescription, "desc", "", "Journal description")
	cmd.Flags().StringArrayVar(&jnlLines, "line", nil, "Journal line SIDE:ACCOUNT:AMOUNT[:DESCRIPTION] (repeatable)")
	cmd.Flags().StringArrayVar(&jnlTaxes, "tax", nil, "Tax type for a line, LINE=TAX_TYPE_ID (repeatable)")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("line")
}

func init() {
	journalFlags(journalPostCmd)
	journalFlags(journalReplaceCmd)
	journalListCmd.Flags().StringVar(&jnlListFrom, "from", "", "First date (YYYY-MM-DD)")
	journalListCmd.Flags().StringVar(&jnlListTo, "to", "", "Last date (YYYY-MM-DD)")

	journalCmd.AddCommand(journalPostCmd)
	journalCmd.AddCommand(journalReplaceCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalGetCmd)
	journalCmd.AddCommand(journalDeleteCmd)
	rootCmd.AddCommand(journalCmd)
}
