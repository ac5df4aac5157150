package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/proofpanel/docvault/internal/services"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL statement against the embedded database",
	Long: `Run one SQL statement against the embedded database. Read-only
statements print their result set; mutating statements persist the updated
snapshot into the workbook before the command exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		srv := services.NewDatabaseService(st, cfg.Vault.RequiredTables)
		rs, err := srv.RunQuery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		// mutating statements save in the background; wait before exiting
		st.Drain()

		if len(rs.Columns) == 0 {
			fmt.Println("OK")
			return nil
		}

		table := tablewriter.NewTable(os.Stdout)
		table.Header(rs.Columns)
		for _, row := range rs.Values {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = formatValue(v)
			}
			if err := table.Append(cells); err != nil {
				return err
			}
		}
		return table.Render()
	},
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(t))
	default:
		return fmt.Sprint(t)
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
