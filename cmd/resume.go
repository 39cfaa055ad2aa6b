package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikitaclicks/decky-multi-user/internal/application"
)

func newResumeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Complete a pending launch after a client restart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome, err := app.resume.OnStartup(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outcome.Action {
			case application.ResumeLaunched:
				_, err = fmt.Fprintf(out, "launched app %s for %s\n", outcome.Intent.AppID, outcome.Intent.TargetSteamID)
			case application.ResumeDiscarded:
				_, err = fmt.Fprintf(out, "discarded stale launch of app %s (intended for %s)\n", outcome.Intent.AppID, outcome.Intent.TargetSteamID)
			default:
				_, err = fmt.Fprintln(out, "no pending launch")
			}

			return err
		},
	}
}
