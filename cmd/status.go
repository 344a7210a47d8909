package cmd

import (
	"encoding/json"
	"fmt"

	dashboardadapter "github.com/Subha2009/kamun-software/internal/adapters/render/dashboard"
	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	showRoster bool
	logSize    int
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.showRoster, "roster", false, "List every delegation")
	cmd.Flags().IntVar(&f.logSize, "log", 5, "Number of session log entries to show")
}

func (f renderFlags) options() dashboardadapter.RenderOptions {
	return dashboardadapter.RenderOptions{ShowRoster: f.showRoster, LogSize: f.logSize}
}

func newStatusCmd(app *app) *cobra.Command {
	var (
		flags  renderFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the dashboard of the active session",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			return writeDashboard(cmd, app, svc.Dashboard(), flags.options(), asJSON)
		}),
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render the dashboard as JSON")
	return cmd
}

func writeDashboard(cmd *cobra.Command, app *app, view application.Dashboard, opts dashboardadapter.RenderOptions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	rendered, err := app.renderer(view, opts)
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
