package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/internal/config"
	"github.com/Zverik/cli-oauth2/pkg/logging"
	"github.com/Zverik/cli-oauth2/pkg/oauth"
	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates a token is needed but not stored, or was rejected.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
	// ExitCodeStorage indicates tokens could not be read or written.
	ExitCodeStorage = 4
)

// Persistent flags shared by all commands.
var (
	configDir   string
	storageFlag string
	tokensFile  string
	logLevel    string
)

var (
	// version is set at build time through SetVersion.
	version = "dev"

	// appConfig is loaded before any command runs.
	appConfig config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauthcli",
		Short: "Obtain and manage OAuth2 tokens from the command line",
		Long: `oauthcli logs you in to OAuth2 providers (OpenStreetMap, Google, GitHub,
GitLab, Mastodon, Reddit, Facebook, LinkedIn) using the authorization code
flow with PKCE, stores the tokens, and makes authorized API requests.

Tokens are kept in a JSON file in the configuration directory, or in the
operating system's credential vault with --storage keyring.`,
		Version: version,
		// Errors are reported by Execute; usage is only useful for argument mistakes.
		SilenceUsage:      true,
		PersistentPreRunE: loadAppConfig,
	}
	cmd.SetVersionTemplate(`{{printf "oauthcli version %s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "Configuration directory (default is the user config dir + /cli-oauth2)")
	flags.StringVar(&storageFlag, "storage", "", "Token storage backend: file, keyring or none")
	flags.StringVar(&tokensFile, "tokens-file", "", "Token file for the file backend")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newTokensCmd(),
		newCleanCmd(),
		newProvidersCmd(),
		newRequestCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadAppConfig reads the configuration, applies flag overrides and sets up logging.
func loadAppConfig(cmd *cobra.Command, args []string) error {
	dir, err := config.ResolveDir(configDir)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}

	if storageFlag != "" {
		cfg.Storage = storageFlag
	}
	if tokensFile != "" {
		cfg.TokensFile = tokensFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logging.InitForCLI(parsed, cmd.ErrOrStderr())

	appConfig = cfg
	return nil
}

// SetVersion sets the version reported by --version and the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// Execute runs the root command and exits with a code describing the failure.
// Interrupting the process cancels a pending login.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to an exit code for scripting and automation.
func getExitCode(err error) int {
	var storageErr *tokenstore.StorageError
	if errors.As(err, &storageErr) {
		return ExitCodeStorage
	}

	var authRequired *cli.AuthRequiredError
	var authExpired *cli.AuthExpiredError
	if errors.As(err, &authRequired) || errors.As(err, &authExpired) {
		return ExitCodeAuthRequired
	}

	var (
		authFailed *cli.AuthFailedError
		denied     *oauth.AuthorizationDeniedError
		exchange   *oauth.TokenExchangeError
		timeout    *oauth.RedirectTimeoutError
	)
	if errors.As(err, &authFailed) || errors.As(err, &denied) || errors.As(err, &exchange) ||
		errors.As(err, &timeout) || errors.Is(err, oauth.ErrStateMismatch) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// printf writes to the command's standard output.
func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
