package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var partnerCmd = &cobra.Command{
	Use:   "partner",
	Short: "Manage customers and suppliers",
}

var (
	partnerCreateCode string
	partnerCreateName string
)

var partnerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a partner",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		p, err := apiClient().CreatePartner(context.Background(), cid, partnerCreateCode, partnerCreateName)
		if err != nil {
			return err
		}
		fmt.Printf("Partner created: %s [%s] %s\n", p.ID, p.Code, p.Name)
		return nil
	},
}

var partnerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List partners",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		partners, err := apiClient().ListPartners(context.Background(), cid)
		if err != nil {
			return err
		}
		if len(partners) == 0 {
			fmt.Println("No partners found.")
			return nil
		}
		fmt.Printf("%-10s %-30s %s\n", "CODE", "NAME", "ID")
		fmt.Printf("%-10s %-30s %s\n", "----", "----", "--")
		for _, p := range partners {
			fmt.Printf("%-10s %-30s %s\n", p.Code, truncate(p.Name, 30), p.ID)
		}
		return nil
	},
}

func init() {
	partnerCreateCmd.Flags().StringVar(&partnerCreateCode, "code", "", "Partner code")
	partnerCreateCmd.Flags().StringVar(&partnerCreateName, "name", "", "Partner name")
	partnerCreateCmd.MarkFlagRequired("code")
	partnerCreateCmd.MarkFlagRequired("name")

	partnerCmd.AddCommand(partnerCreateCmd)
	partnerCmd.AddCommand(partnerListCmd)
	rootCmd.AddCommand(partnerCmd)
}
