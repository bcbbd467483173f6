package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/config"
	"github.com/Zverik/cli-oauth2/pkg/oauth"
)

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

// clientFlags identify the OAuth client a command acts for. Values given on
// the command line win over the client registered in config.yaml.
type clientFlags struct {
	clientID     string
	clientSecret string
	scopes       []string
	url          string
}

func (f *clientFlags) register(cmd *cobra.Command, withSecret bool) {
	cmd.Flags().StringVar(&f.clientID, "client-id", "", "OAuth client ID (default from config.yaml)")
	cmd.Flags().StringVar(&f.url, "url", "", "Server URL for self-hosted providers (openstreetmap, gitlab, mastodon)")
	if withSecret {
		cmd.Flags().StringVar(&f.clientSecret, "client-secret", "", "OAuth client secret, for confidential clients")
		cmd.Flags().StringSliceVar(&f.scopes, "scope", nil, "Scopes to request (repeatable or comma-separated)")
	}
}

// resolve merges the flags over the configured client for providerID.
func (f *clientFlags) resolve(providerID string) (config.ClientConfig, error) {
	client, _ := appConfig.Client(providerID)
	client.Provider = providerID
	if f.clientID != "" {
		client.ClientID = f.clientID
	}
	if f.clientSecret != "" {
		client.ClientSecret = f.clientSecret
	}
	if len(f.scopes) > 0 {
		client.Scopes = f.scopes
	}
	if f.url != "" {
		client.URL = f.url
	}

	if client.ClientID == "" {
		return config.ClientConfig{}, fmt.Errorf("no client ID for %s: pass --client-id or add the client to %s/config.yaml", providerID, appConfig.Dir)
	}
	return client, nil
}

// newFlow creates a flow for client using the configured token store.
func newFlow(cmd *cobra.Command, client config.ClientConfig) (*oauth.Flow, error) {
	provider, err := oauth.LookupProvider(client.Provider, client.URL)
	if err != nil {
		return nil, err
	}
	store, err := appConfig.OpenStore()
	if err != nil {
		return nil, err
	}

	return oauth.New(oauth.Config{
		Provider:     provider,
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Scopes:       client.Scopes,
		Store:        store,
		Out:          cmd.ErrOrStderr(),
		In:           cmd.InOrStdin(),
		Browser:      openBrowser,
	}), nil
}
