package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/proofpanel/docvault/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed <script.sql>",
	Short: "Run a seed script and persist the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read seed script: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		srv := services.NewDatabaseService(st, cfg.Vault.RequiredTables)
		if err := srv.Seed(cmd.Context(), string(script)); err != nil {
			return err
		}

		color.Green("seeded %s", cfg.Vault.WorkbookPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
