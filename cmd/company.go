package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage companies",
}

var (
	companyCreateCode    string
	companyCreateName    string
	companyCreateFYEnd   int
	companyCreateNoChart bool
)

var companyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a company, seeding the default chart of accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient().CreateCompany(context.Background(),
			companyCreateCode, companyCreateName, companyCreateFYEnd, !companyCreateNoChart)
		if err != nil {
			return err
		}
		fmt.Printf("Company created: %s (%s) %s\n", c.ID, c.Code, c.Name)
		return nil
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		companies, err := apiClient().ListCompanies(context.Background())
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Println("No companies found.")
			return nil
		}

		fmt.Printf("%-38s %-10s %-30s %s\n", "ID", "CODE", "NAME", "FY END")
		fmt.Printf("%-38s %-10s %-30s %s\n", "----", "----", "----", "------")
		for _, c := range companies {
			fmt.Printf("%-38s %-10s %-30s %d\n", c.ID, c.Code, truncate(c.Name, 30), c.FiscalYearEndMonth)
		}
		return nil
	},
}

var companyGetCmd = &cobra.Command{
	Use:   "get [id|code]",
	Short: "Get company details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient().GetCompany(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:      %s\n", c.ID)
		fmt.Printf("Code:    %s\n", c.Code)
		fmt.Printf("Name:    %s\n", c.Name)
		fmt.Printf("FY end:  month %d\n", c.FiscalYearEndMonth)
		fmt.Printf("Created: %s\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}

func init() {
	companyCreateCmd.Flags().StringVar(&companyCreateCode, "code", "", "Company code")
	companyCreateCmd.Flags().StringVar(&companyCreateName, "name", "", "Company name")
	companyCreateCmd.Flags().IntVar(&companyCreateFYEnd, "fy-end", 12, "Fiscal year end month (1-12)")
	companyCreateCmd.Flags().BoolVar(&companyCreateNoChart, "no-chart", false, "Do not seed the default chart of accounts")
	companyCreateCmd.MarkFlagRequired("code")
	companyCreateCmd.MarkFlagRequired("name")

	companyCmd.AddCommand(companyCreateCmd)
	companyCmd.AddCommand(companyListCmd)
	companyCmd.AddCommand(companyGetCmd)
	rootCmd.AddCommand(companyCmd)
}
