package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dmu",
		Short:         "Decky Multi User (dmu): switch Steam accounts and resume launches",
		Long:          "dmu switches a shared Steam client between its local login accounts, records a pending game launch so it survives the client restart, and answers ownership questions from the client's own config files.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountsCmd(app),
		newSwitchCmd(app),
		newResumeCmd(app),
		newOwnerCmd(app),
		newSettingsCmd(app),
		newWebKeyCmd(app),
	)

	return rootCmd
}
