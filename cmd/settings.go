package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write plugin settings",
	}

	cmd.AddCommand(
		newSettingsGetCmd(app),
		newSettingsSetCmd(app),
	)

	return cmd
}

func newSettingsGetCmd(app *app) *cobra.Command {
	var fallback string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a settings value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := app.settings.Get(cmd.Context(), args[0], fallback)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}

	cmd.Flags().StringVar(&fallback, "default", "", "Value to print when the key is unset")

	return cmd
}

func newSettingsSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a settings value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.settings.Set(cmd.Context(), args[0], args[1])
		},
	}
}
