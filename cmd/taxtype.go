package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/ledger"
)

var taxTypeCmd = &cobra.Command{
	Use:     "taxtype",
	Aliases: []string{"tax"},
	Short:   "Manage tax types",
}

var (
	taxReq  client.TaxTypeRequest
	taxRate string
)

func taxRequest() (client.TaxTypeRequest, error) {
	rate, err := ledger.ParseAmount(taxRate)
	if err != nil {
		return client.TaxTypeRequest{}, fmt.Errorf("invalid rate %q: %w", taxRate, err)
	}
	req := taxReq
	req.Rate = rate
	return req, nil
}

var taxTypeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a tax type",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		req, err := taxRequest()
		if err != nil {
			return err
		}
		t, err := apiClient().CreateTaxType(context.Background(), cid, req)
		if err != nil {
			return err
		}
		fmt.Printf("Tax type created: %s [%s] %s%%\n", t.ID, t.Code, t.Rate.String())
		return nil
	},
}

var taxTypeUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace a tax type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		req, err := taxRequest()
		if err != nil {
			return err
		}
		t, err := apiClient().UpdateTaxType(context.Background(), cid, args[0], req)
		if err != nil {
			return err
		}
		fmt.Printf("Tax type updated: %s [%s] %s%%\n", t.ID, t.Code, t.Rate.String())
		return nil
	},
}

var taxListOn string

var taxTypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tax types",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		var on time.Time
		if taxListOn != "" {
			if on, err = ledger.ParseDate(taxListOn); err != nil {
				return err
			}
		}
		types, err := apiClient().ListTaxTypes(context.Background(), cid, on)
		if err != nil {
			return err
		}
		if len(types) == 0 {
			fmt.Println("No tax types found.")
			return nil
		}

		fmt.Printf("%-10s %-24s %8s %-10s %-10s %s\n", "CODE", "NAME", "RATE", "FROM", "TO", "ID")
		fmt.Printf("%-10s %-24s %8s %-10s %-10s %s\n", "----", "----", "----", "----", "--", "--")
		for _, t := range types {
			to := ""
			if t.EffectiveTo != nil {
				to = ledger.FormatDate(*t.EffectiveTo)
			}
			fmt.Printf("%-10s %-24s %7s%% %-10s %-10s %s\n",
				t.Code, truncate(t.Name, 24), t.Rate.String(), ledger.FormatDate(t.EffectiveFrom), to, t.ID)
		}
		return nil
	},
}

var taxTypeDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an unused tax type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		if err := apiClient().DeleteTaxType(context.Background(), cid, args[0]); err != nil {
			return err
		}
		fmt.Printf("Tax type deleted: %s\n", args[0])
		return nil
	},
}

func taxTypeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&taxReq.Code, "code", "", "Tax code (e.g. VAT20)")
	cmd.Flags().StringVar(&taxReq.Name, "name", "", "Tax name")
	cmd.Flags().StringVar(&taxRate, "rate", "", "Rate in percent (e.g. 20)")
	cmd.Flags().StringVar(&taxReq.EffectiveFrom, "from", "", "Effective from (YYYY-MM-DD)")
	cmd.Flags().StringVar(&taxReq.EffectiveTo, "to", "", "Effective to, inclusive (YYYY-MM-DD)")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("rate")
	cmd.MarkFlagRequired("from")
}

func init() {
	taxTypeFlags(taxTypeCreateCmd)
	taxTypeFlags(taxTypeUpdateCmd)
	taxTypeListCmd.Flags().StringVar(&taxListOn, "on", "", "Only types effective on this date (YYYY-MM-DD)")

	taxTypeCmd.AddCommand(taxTypeCreateCmd)
	taxTypeCmd.AddCommand(taxTypeUpdateCmd)
	taxTypeCmd.AddCommand(taxTypeListCmd)
	taxTypeCmd.AddCommand(taxTypeDeleteCmd)
	rootCmd.AddCommand(taxTypeCmd)
}
