package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/report"
	"github.com/james2654817/sales-dashboard-backend/pkg/notion"
)

var reportPermission string

// reportCmd prints the assembled report to stdout. Handy for checking
// what the dashboard will see without standing up the server.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the aggregated sales report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" {
			return eris.New("config: notion.token is required")
		}

		perm := auth.Permission(reportPermission)
		switch perm {
		case auth.PermissionAll, auth.PermissionHR, auth.PermissionMHP:
		default:
			return eris.New("unknown permission " + reportPermission)
		}

		client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
		assembler := report.NewAssembler(client, cfg.GroupSpecs())

		rep, err := assembler.Build(cmd.Context(), perm, time.Now())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPermission, "permission", "all", "permission scope (all|hr|mhp)")
	rootCmd.AddCommand(reportCmd)
}
