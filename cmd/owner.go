package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

func newOwnerCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "owner <appid>",
		Short: "Show which accounts installed and played an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := app.queries.AppOwnership(cmd.Context(), domain.AppID(args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			out := cmd.OutOrStdout()
			if !view.Known {
				_, _ = fmt.Fprintf(out, "app %s: no install manifest found\n", view.AppID)
			} else {
				if view.Record.LastOwner != "" {
					_, _ = fmt.Fprintf(out, "last owner: %s\n", view.Record.LastOwner)
				}
				if view.Record.InstalledBy != "" {
					_, _ = fmt.Fprintf(out, "installed by: %s\n", view.Record.InstalledBy)
				}
			}

			if len(view.LocalPlayers) > 0 {
				players := make([]string, 0, len(view.LocalPlayers))
				for _, id := range view.LocalPlayers {
					players = append(players, string(id))
				}
				_, _ = fmt.Fprintf(out, "local players: %s\n", strings.Join(players, ", "))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
