package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/proofpanel/docvault/internal/services"
	"github.com/proofpanel/docvault/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault's database state and stored attachments",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		srv := services.NewDatabaseService(st, cfg.Vault.RequiredTables)
		state, err := srv.State(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("workbook: %s\n", cfg.Vault.WorkbookPath)
		if state.HasDatabase {
			color.Green("database: present")
		} else {
			color.Yellow("database: absent")
		}
		if len(state.MissingTables) > 0 {
			color.Yellow("missing tables: %s", strings.Join(state.MissingTables, ", "))
		}
		if state.HasData {
			color.Green("data: present")
		}

		// listing hydrates the database, so skip it while none exists
		if !state.HasDatabase {
			return nil
		}

		records, err := st.Attachments().ListRecords(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("attachments: %d\n", len(records))
		for _, r := range records {
			fmt.Printf("  %-32s %10s  %s\n", r.FileName, util.HumanBytes(r.RawFileSize), r.CreatedUtc)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
