package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// runAccounts prints the configured accounts without starting monitors.
func runAccounts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	fmt.Printf("%-16s %-44s %-50s %s\n", "NAME", "ADDRESS", "VALOPER", "LOG FILE")
	for _, account := range cfg.Accounts {
		fmt.Printf("%-16s %-44s %-50s %s\n",
			account.Name,
			account.Address,
			account.Valoper,
			filepath.Join(cfg.OutputDir, account.Name+".csv"),
		)
	}

	fmt.Printf("\n%d account(s), polling %s every %s\n", len(cfg.Accounts), cfg.BaseURL, cfg.GetInterval())
	return nil
}
