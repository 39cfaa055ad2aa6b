package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// webAPIKeyName is where the Steam Web API key lives in the key store.
const webAPIKeyName = "dmu/steamweb-api-key"

func newWebKeyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web-key",
		Short: "Manage the stored Steam Web API key",
		Long:  "Manage the Steam Web API key used for live persona-name lookups. The key is kept in pass when available, otherwise in a file readable only by you; the steamweb.key config value takes precedence over the stored key.",
	}

	cmd.AddCommand(
		newWebKeySetCmd(app),
		newWebKeyShowCmd(app),
		newWebKeyClearCmd(app),
	)

	return cmd
}

func newWebKeySetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key]",
		Short: "Store the Steam Web API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = strings.TrimSpace(args[0])
			} else {
				// Read from stdin so the key stays out of shell history.
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Steam Web API key: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key from stdin: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if key == "" {
				return fmt.Errorf("key must not be empty")
			}

			if err := app.keys.Put(cmd.Context(), webAPIKeyName, key); err != nil {
				return fmt.Errorf("store web api key: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "web api key stored")
			return err
		},
	}
}

func newWebKeyShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored Steam Web API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := app.keys.Get(cmd.Context(), webAPIKeyName)
			if err != nil {
				return fmt.Errorf("read web api key: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}

func newWebKeyClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored Steam Web API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.keys.Delete(cmd.Context(), webAPIKeyName); err != nil {
				return fmt.Errorf("delete web api key: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "web api key removed")
			return err
		},
	}
}
