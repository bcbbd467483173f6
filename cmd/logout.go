package cmd

import (
	"github.com/spf13/cobra"
)

var logoutClient clientFlags

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout <provider>",
		Short: "Remove the stored token of a client",
		Long: `Remove the stored token for one provider and client ID.

Removing a token that is not stored is not an error.

Examples:
  oauthcli logout openstreetmap --client-id abc123
  oauthcli logout gitlab --url https://gitlab.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runLogout,
	}

	logoutClient = clientFlags{}
	logoutClient.register(cmd, false)
	return cmd
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := logoutClient.resolve(args[0])
	if err != nil {
		return err
	}
	flow, err := newFlow(cmd, client)
	if err != nil {
		return err
	}

	hadToken := flow.Authorized()
	if err := flow.Logout(); err != nil {
		return err
	}

	if hadToken {
		printf(cmd, "Logged out of %s (client %s)\n", client.Provider, client.ClientID)
	} else {
		printf(cmd, "No token stored for %s (client %s)\n", client.Provider, client.ClientID)
	}
	return nil
}
