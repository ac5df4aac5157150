package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the host workbook the vault embeds into",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Vault.WorkbookPath
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		wb := excelize.NewFile()
		defer wb.Close()
		if err := wb.SaveAs(path); err != nil {
			return fmt.Errorf("create workbook: %w", err)
		}

		color.Green("created %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
