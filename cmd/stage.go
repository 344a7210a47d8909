package cmd

import (
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newStageCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stage",
		Short: "Show the stage the dashboard resolves to on startup",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			stage := svc.Sessions.Stage()
			printf(cmd, "stage: %s\n", stage)
			if stage == domain.StageAdmin {
				printf(cmd, "presentation: %s\n", strings.Join(presentationPath(stage), " -> "))
			}
			return nil
		}),
	}
}

func presentationPath(from domain.Stage) []string {
	path := []string{string(from)}
	for stage, ok := from.Next(); ok; stage, ok = stage.Next() {
		path = append(path, string(stage))
	}
	return path
}
