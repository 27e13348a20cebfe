package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Manage fiscal periods",
}

var periodReq client.PeriodRequest

var periodCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a fiscal period",
	Long:  "Create a fiscal period. Periods of one company may not overlap.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		p, err := apiClient().CreatePeriod(context.Background(), cid, periodReq)
		if err != nil {
			return err
		}
		printPeriodLine("Period created:", p)
		return nil
	},
}

var periodUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace the dates and name of an open fiscal period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		p, err := apiClient().UpdatePeriod(context.Background(), cid, args[0], periodReq)
		if err != nil {
			return err
		}
		printPeriodLine("Period updated:", p)
		return nil
	},
}

var periodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fiscal periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		periods, err := apiClient().ListPeriods(context.Background(), cid)
		if err != nil {
			return err
		}
		if len(periods) == 0 {
			fmt.Println("No fiscal periods found.")
			return nil
		}

		fmt.Printf("%-6s %-4s %-12s %-10s %-10s %-6s %s\n", "YEAR", "NO", "NAME", "START", "END", "STATUS", "ID")
		fmt.Printf("%-6s %-4s %-12s %-10s %-10s %-6s %s\n", "----", "--", "----", "-----", "---", "------", "--")
		for _, p := range periods {
			fmt.Printf("%-6d %-4d %-12s %-10s %-10s %-6s %s\n",
				p.Year, p.Number, truncate(p.Name, 12),
				ledger.FormatDate(p.StartDate), ledger.FormatDate(p.EndDate),
				periodStatus(&p), p.ID)
		}
		return nil
	},
}

var periodCloseCmd = &cobra.Command{
	Use:   "close [id]",
	Short: "Close a fiscal period to further postings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		p, err := apiClient().ClosePeriod(context.Background(), cid, args[0])
		if err != nil {
			return err
		}
		printPeriodLine("Period closed:", p)
		return nil
	},
}

var periodReopenCmd = &cobra.Command{
	Use:   "reopen [id]",
	Short: "Reopen a closed fiscal period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		p, err := apiClient().ReopenPeriod(context.Background(), cid, args[0])
		if err != nil {
			return err
		}
		printPeriodLine("Period reopened:", p)
		return nil
	},
}

var periodDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an open fiscal period with no journals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		if err := apiClient().DeletePeriod(context.Background(), cid, args[0]); err != nil {
			return err
		}
		fmt.Printf("Period deleted: %s\n", args[0])
		return nil
	},
}

func periodStatus(p *ledger.FiscalPeriod) string {
	if p.Closed {
		return "closed"
	}
	return "open"
}

func printPeriodLine(prefix string, p *ledger.FiscalPeriod) {
	fmt.Printf("%s %s %s (%s to %s) %s\n", prefix, p.ID, p.Name,
		ledger.FormatDate(p.StartDate), ledger.FormatDate(p.EndDate), periodStatus(p))
}

func periodFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&periodReq.Year, "year", 0, "Fiscal year")
	cmd.Flags().IntVar(&periodReq.Number, "number", 0, "Period number within the year")
	cmd.Flags().StringVar(&periodReq.Name, "name", "", "Period name (e.g. 2025-01)")
	cmd.Flags().StringVar(&periodReq.StartDate, "start", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&periodReq.EndDate, "end", "", "Last day, inclusive (YYYY-MM-DD)")
	cmd.MarkFlagRequired("year")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
}

func init() {
	periodFlags(periodCreateCmd)
	periodFlags(periodUpdateCmd)

	periodCmd.AddCommand(periodCreateCmd)
	periodCmd.AddCommand(periodUpdateCmd)
	periodCmd.AddCommand(periodListCmd)
	periodCmd.AddCommand(periodCloseCmd)
	periodCmd.AddCommand(periodReopenCmd)
	periodCmd.AddCommand(periodDeleteCmd)
	rootCmd.AddCommand(periodCmd)
}
