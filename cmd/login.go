package cmd

import (
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/internal/config"
	"github.com/Zverik/cli-oauth2/pkg/logging"
	"github.com/Zverik/cli-oauth2/pkg/oauth"
	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

// Login-specific flags
var (
	loginClient    clientFlags
	loginPort      int
	loginPortRange string
	loginHost      string
	loginBind      string
	loginManual    bool
	loginForce     bool
	loginTimeout   time.Duration
	loginNoBrowser bool
	loginAudience  string
	loginTestAPI   string
	loginSave      bool
	loginQuiet     bool
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Log in to an OAuth2 provider and store the token",
		Long: `Log in to an OAuth2 provider using the authorization code flow with PKCE.

By default a browser is opened and a temporary local web server on port 8080
receives the provider's redirect. With --manual the provider shows a code
that you paste into the terminal instead.

A stored token is reused unless --force is given.

Examples:
  oauthcli login openstreetmap --client-id abc123
  oauthcli login github --client-id abc --client-secret s3cret --scope repo
  oauthcli login mastodon --url https://mastodon.social --port-range 8080-8090
  oauthcli login google --manual`,
		Args: cobra.ExactArgs(1),
		RunE: runLogin,
	}

	loginClient = clientFlags{}
	loginClient.register(cmd, true)

	flags := cmd.Flags()
	flags.IntVar(&loginPort, "port", oauth.DefaultPortRangeStart, "Port for the local redirect listener")
	flags.StringVar(&loginPortRange, "port-range", "", "Use the first free port in START-STOP (STOP exclusive) instead of --port")
	flags.StringVar(&loginHost, "host", "", "Host name in the redirect URI (default depends on the provider)")
	flags.StringVar(&loginBind, "bind", "", "Address to listen on (default is --host)")
	flags.BoolVar(&loginManual, "manual", false, "Paste the authorization code instead of running a local server")
	flags.BoolVar(&loginForce, "force", false, "Log in even if a token is already stored")
	flags.DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the redirect (0 waits forever)")
	flags.BoolVar(&loginNoBrowser, "no-browser", false, "Print the URL without opening a browser")
	flags.StringVar(&loginAudience, "audience", "", "Audience to send with the token request")
	flags.StringVar(&loginTestAPI, "test-api", "", "API path used to check a stored token before reusing it")
	flags.BoolVar(&loginSave, "save", false, "Register the client in config.yaml after a successful login")
	flags.BoolVarP(&loginQuiet, "quiet", "q", false, "Suppress the prompt and progress output")

	cmd.MarkFlagsMutuallyExclusive("port", "port-range")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	providerID := args[0]
	client, err := loginClient.resolve(providerID)
	if err != nil {
		return err
	}
	flow, err := newFlow(cmd, client)
	if err != nil {
		return err
	}

	common := oauth.Options{
		Force:     loginForce,
		Quiet:     loginQuiet,
		NoBrowser: loginNoBrowser,
		Audience:  loginAudience,
	}
	if loginTestAPI != "" {
		common.TokenTest = oauth.GetTokenTest(loginTestAPI)
	}

	if loginManual {
		err = flow.AuthCode(cmd.Context(), oauth.CodeOptions{Options: common})
	} else {
		err = loginWithServer(cmd, flow, common)
	}

	var storageErr *tokenstore.StorageError
	switch {
	case errors.As(err, &storageErr):
		// The login itself worked; only persisting the token failed.
		return err
	case err != nil:
		return &cli.AuthFailedError{Provider: providerID, Reason: explainLoginError(err, flow)}
	}

	if flow.State() == oauth.Satisfied {
		printf(cmd, "Already logged in to %s as client %s (use --force to log in again)\n", providerID, client.ClientID)
	} else {
		printf(cmd, "%s\n", text.FgGreen.Sprintf("Logged in to %s as client %s", providerID, client.ClientID))
	}

	if loginSave {
		return saveClient(client)
	}
	return nil
}

// saveClient registers client in config.yaml. The file is re-read without
// environment overrides so that neither flags nor OAUTHCLI_* variables
// end up persisted.
func saveClient(client config.ClientConfig) error {
	saved, err := config.LoadConfigFile(appConfig.Dir)
	if err != nil {
		return err
	}
	saved.SetClient(client)
	return config.SaveConfig(saved)
}

func loginWithServer(cmd *cobra.Command, flow *oauth.Flow, common oauth.Options) error {
	opts := oauth.ServerOptions{
		Options:  common,
		Host:     loginHost,
		BindAddr: loginBind,
		Port:     loginPort,
		Timeout:  loginTimeout,
	}
	if loginPortRange != "" {
		ports, err := oauth.ParsePortRange(loginPortRange)
		if err != nil {
			return err
		}
		opts.Ports = &ports
	}

	var progress *cli.Progress
	opts.OnListening = func(redirectURI string) {
		logging.Debug("Login", "Waiting for the redirect to %s", redirectURI)
		progress = cli.StartProgress(cmd.ErrOrStderr(), "Waiting for authorization in the browser...", loginQuiet)
	}

	err := flow.AuthServer(cmd.Context(), opts)
	if err != nil {
		progress.Fail("Authorization failed")
	} else {
		progress.Stop()
	}
	return err
}

// explainLoginError classifies network failures of the token request.
func explainLoginError(err error, flow *oauth.Flow) error {
	var exchangeErr *oauth.TokenExchangeError
	if errors.As(err, &exchangeErr) {
		if connErr := cli.ClassifyConnectionError(err, flow.Provider().TokenURL); connErr != nil {
			return connErr
		}
	}
	return err
}
