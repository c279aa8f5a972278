package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sawpanic/layerwatch/internal/config"
)

// runInit writes the starter configuration file.
func runInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	if err := config.WriteStarter(path); err != nil {
		return err
	}

	fmt.Printf("✅ Wrote starter config to %s\n", path)
	fmt.Println("   Edit the accounts section, then start with: layerwatch run -c " + path)
	return nil
}
