package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/pkg/oauth"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the built-in OAuth2 providers",
		Long: `List the built-in providers with their authorization endpoint, API base
and the client ID registered for them in config.yaml.

Mastodon has no default server and needs --url.`,
		Args: cobra.NoArgs,
		RunE: runProviders,
	}
}

func runProviders(cmd *cobra.Command, args []string) error {
	table := cli.NewTable(cmd.OutOrStdout(), "PROVIDER", "AUTHORIZE URL", "API BASE", "CLIENT ID")
	for _, id := range oauth.ProviderIDs() {
		client, _ := appConfig.Client(id)
		authorizeURL, apiBase := "-", "-"

		// Configured URLs override the defaults shown here.
		if provider, err := oauth.LookupProvider(id, client.URL); err == nil {
			authorizeURL = provider.AuthorizeURL
			if provider.APIBase != "" {
				apiBase = provider.APIBase
			}
		}

		clientID := client.ClientID
		if clientID == "" {
			clientID = "-"
		}
		table.AddRow(id, authorizeURL, apiBase, clientID)
	}
	table.Render()
	return nil
}
