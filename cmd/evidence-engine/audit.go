package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/audit"
	"github.com/pdiddy/evidence-engine/internal/resolve"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the verdict audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded verdicts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := auditPath(cmd)
		if path == "" {
			return fmt.Errorf("no audit database: pass --audit-db or set audit.db_path")
		}
		store, err := audit.NewStore(path)
		if err != nil {
			return err
		}
		defer store.Close()

		var entries []audit.Entry
		if runID, _ := cmd.Flags().GetString("run"); runID != "" {
			entries, err = store.Run(cmd.Context(), runID)
		} else {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err = store.Recent(cmd.Context(), limit)
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return resolve.FormatJSON(entries, os.Stdout)
		}
		audit.FormatTable(entries, os.Stdout)
		return nil
	},
}

func init() {
	auditListCmd.Flags().String("audit-db", "", "SQLite audit database (default from config)")
	auditListCmd.Flags().Int("limit", audit.DefaultRecentLimit, "maximum entries to list")
	auditListCmd.Flags().String("run", "", "list only the verdicts of this run ID")
	auditListCmd.Flags().Bool("json", false, "output entries as JSON")

	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(auditCmd)
}
