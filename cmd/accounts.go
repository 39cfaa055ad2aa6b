package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	accountsrender "github.com/nikitaclicks/decky-multi-user/internal/adapters/render/accounts"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/steamweb"
	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

const personaFetchTimeout = 10 * time.Second

func newAccountsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect the client's login accounts",
	}

	cmd.AddCommand(
		newAccountsListCmd(app),
		newAccountsCurrentCmd(app),
	)

	return cmd
}

func newAccountsListCmd(app *app) *cobra.Command {
	var asJSON bool
	var withPersonas bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List login accounts known to the client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := app.queries.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(accounts)
			}

			opts := accountsrender.RenderOptions{Now: app.now()}

			target, err := app.queries.AutoLoginTarget(cmd.Context())
			if err != nil {
				app.logger.Warn().Err(err).Msg("Could not read auto-login target")
			} else {
				opts.AutoLoginUser = target
			}

			if withPersonas {
				opts.Personas = fetchPersonas(cmd, app, accounts)
			}

			rendered, err := app.renderAccounts(accounts, opts)
			if err != nil {
				return fmt.Errorf("render accounts: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&withPersonas, "personas", false, "Fetch live persona names from the Steam Web API")

	return cmd
}

func newAccountsCurrentCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the most recently signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := app.queries.CurrentAccount(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(account)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", account.SteamID, account.AccountName, account.PersonaName)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// fetchPersonas decorates the listing with live persona names. It can only
// relabel what is shown; any failure falls back to the stored names.
func fetchPersonas(cmd *cobra.Command, app *app, accounts []domain.Account) map[domain.SteamID]string {
	directory := app.personas
	if directory == nil {
		// No key in the configuration; see whether one was stored through
		// `dmu web-key set`.
		key, err := app.keys.Get(cmd.Context(), webAPIKeyName)
		if err != nil {
			app.logger.Warn().Msg("Persona lookup not configured; set steamweb.key or run `dmu web-key set`")
			return nil
		}
		directory = &steamweb.Client{BaseURL: app.webBaseURL, Key: key}
	}

	ids := make([]domain.SteamID, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.SteamID)
	}

	var names map[domain.SteamID]string
	fetch := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, personaFetchTimeout)
		defer cancel()

		fetched, err := directory.PersonaNames(ctx, ids)
		if err != nil {
			return err
		}
		names = fetched
		return nil
	}

	if err := runPersonaFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), fetch); err != nil {
		app.logger.Warn().Err(err).Msg("Persona lookup failed; using stored names")
		return nil
	}

	return names
}
