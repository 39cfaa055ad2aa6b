package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikitaclicks/decky-multi-user/internal/application"
	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

func newSwitchCmd(app *app) *cobra.Command {
	var accountName string
	var launchApp string
	var noRestart bool

	cmd := &cobra.Command{
		Use:   "switch <steamid>",
		Short: "Switch the client to another login account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveSteamID(args[0])
			if err != nil {
				return err
			}

			ack, err := app.switches.Switch(cmd.Context(), application.SwitchCommand{
				TargetID:    target,
				AccountName: accountName,
				LaunchApp:   domain.AppID(launchApp),
				NoRestart:   noRestart,
			})
			if err != nil {
				var switchErr *application.SwitchError
				if errors.As(err, &switchErr) && switchErr.Op == application.OpRestart {
					return fmt.Errorf("%w (config already updated; restart the client manually to finish the switch)", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "switched to %s (%s)\n", ack.Target.AccountName, ack.Target.SteamID)
			if ack.LaunchQueued {
				_, _ = fmt.Fprintf(out, "queued launch of app %s after restart\n", launchApp)
			}
			if !ack.RestartIssued {
				_, _ = fmt.Fprintln(out, "restart skipped; the switch takes effect on the next client start")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&accountName, "name", "", "Login name to write to the auto-login config (default: from the roster)")
	cmd.Flags().StringVar(&launchApp, "launch", "", "App ID to start once the client is back up")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "Update config without restarting the client")

	return cmd
}
