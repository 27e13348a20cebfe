package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"acct"},
	Short:   "Manage the chart of accounts",
}

// account create
var (
	acctCreateCode string
	acctCreateName string
	acctCreateType string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		typ, err := ledger.ParseAccountType(acctCreateType)
		if err != nil {
			return err
		}

		created, err := apiClient().CreateAccount(context.Background(), cid, acctCreateCode, acctCreateName, typ)
		if err != nil {
			return err
		}
		fmt.Printf("Account created: %s [%s] %s %s\n", created.ID, created.Code, created.Name, created.Type)
		return nil
	},
}

// account list
var acctListType string

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		var typ ledger.AccountType
		if acctListType != "" {
			if typ, err = ledger.ParseAccountType(acctListType); err != nil {
				return err
			}
		}

		accounts, err := apiClient().ListAccounts(context.Background(), cid, typ)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		fmt.Printf("%-8s %-30s %-10s %-6s %s\n", "CODE", "NAME", "TYPE", "SYSTEM", "ID")
		fmt.Printf("%-8s %-30s %-10s %-6s %s\n", "----", "----", "----", "------", "--")
		for _, a := range accounts {
			sys := ""
			if a.IsSystem {
				sys = "yes"
			}
			fmt.Printf("%-8s %-30s %-10s %-6s %s\n", a.Code, truncate(a.Name, 30), a.Type, sys, a.ID)
		}
		return nil
	},
}

// account get
var accountGetCmd = &cobra.Command{
	Use:   "get [id|code]",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		c := apiClient()
		acct, err := c.GetAccount(context.Background(), cid, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:      %s\n", acct.ID)
		fmt.Printf("Code:    %s\n", acct.Code)
		fmt.Printf("Name:    %s\n", acct.Name)
		fmt.Printf("Type:    %s (normal %s)\n", acct.Type, acct.Type.NormalSide())
		fmt.Printf("System:  %v\n", acct.IsSystem)
		fmt.Printf("Created: %s\n", acct.CreatedAt.Format("2006-01-02 15:04:05"))

		subs, err := c.ListSubAccounts(context.Background(), cid, acct.ID)
		if err != nil {
			return err
		}
		if len(subs) > 0 {
			fmt.Println("Sub-accounts:")
			for _, s := range subs {
				fmt.Printf("  %-10s %-30s %s\n", s.Code, s.Name, s.ID)
			}
		}
		return nil
	},
}

// account update
var (
	acctUpdateName string
	acctUpdateType string
)

var accountUpdateCmd = &cobra.Command{
	Use:   "update [id|code]",
	Short: "Rename or retype an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		var typ ledger.AccountType
		if acctUpdateType != "" {
			if typ, err = ledger.ParseAccountType(acctUpdateType); err != nil {
				return err
			}
		}

		acct, err := apiClient().UpdateAccount(context.Background(), cid, args[0], acctUpdateName, typ)
		if err != nil {
			return err
		}
		fmt.Printf("Account updated: [%s] %s %s\n", acct.Code, acct.Name, acct.Type)
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [id|code]",
	Short: "Delete an account with no journal lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		if err := apiClient().DeleteAccount(context.Background(), cid, args[0]); err != nil {
			return err
		}
		fmt.Printf("Account deleted: %s\n", args[0])
		return nil
	},
}

// account sub create
var (
	subCreateCode string
	subCreateName string
)

var accountSubCmd = &cobra.Command{
	Use:   "sub [account]",
	Short: "Create a sub-account under an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		sub, err := apiClient().CreateSubAccount(context.Background(), cid, args[0], subCreateCode, subCreateName)
		if err != nil {
			return err
		}
		fmt.Printf("Sub-account created: %s [%s] %s\n", sub.ID, sub.Code, sub.Name)
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateCode, "code", "", "Account code (e.g. 1050)")
	accountCreateCmd.Flags().StringVar(&acctCreateName, "name", "", "Account name")
	accountCreateCmd.Flags().StringVar(&acctCreateType, "type", "", "ASSET, LIABILITY, EQUITY, REVENUE or EXPENSE")
	accountCreateCmd.MarkFlagRequired("code")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.MarkFlagRequired("type")

	accountListCmd.Flags().StringVar(&acctListType, "type", "", "Filter by account type")

	accountUpdateCmd.Flags().StringVar(&acctUpdateName, "name", "", "New name")
	accountUpdateCmd.Flags().StringVar(&acctUpdateType, "type", "", "New account type")

	accountSubCmd.Flags().StringVar(&subCreateCode, "code", "", "Sub-account code")
	accountSubCmd.Flags().StringVar(&subCreateName, "name", "", "Sub-account name")
	accountSubCmd.MarkFlagRequired("code")
	accountSubCmd.MarkFlagRequired("name")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountUpdateCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	accountCmd.AddCommand(accountSubCmd)

	rootCmd.AddCommand(accountCmd)
}
