package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "layerwatch"
	version = "v0.4.1"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		// Human at a terminal gets the console format; services keep JSON.
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Tellor Layer account monitor",
		Version: version,
		Long: `layerwatch polls a Tellor Layer node's REST API for account balances,
rewards, tips, shares and delegations, and appends one timestamped row
per account per cycle to a CSV log.`,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the monitor daemon",
		Long:  "Polls every configured account on a fixed interval and appends snapshots to per-account CSV logs until interrupted",
		RunE:  runRun,
	}
	runCmd.Flags().StringP("config", "c", "", "Path to YAML config (accounts come from the environment when omitted)")
	runCmd.Flags().String("env-file", "", "Path to a .env file to load before reading environment slots")
	runCmd.Flags().String("output-dir", "", "Override the CSV output directory")
	runCmd.Flags().Bool("once", false, "Run a single cycle per account, then exit")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long:  "Generates a commented starter configuration; refuses to overwrite an existing file",
		RunE:  runInit,
	}
	initCmd.Flags().StringP("config", "c", "layerwatch.yaml", "Where to write the starter config")

	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "List configured accounts and their log files",
		Long:  "Loads the configuration the same way 'run' does and prints each account without starting any monitors",
		RunE:  runAccounts,
	}
	accountsCmd.Flags().StringP("config", "c", "", "Path to YAML config (accounts come from the environment when omitted)")
	accountsCmd.Flags().String("env-file", "", "Path to a .env file to load before reading environment slots")
	accountsCmd.Flags().String("output-dir", "", "Override the CSV output directory")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(accountsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
