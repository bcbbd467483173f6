package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

var (
	cleanAll bool
	cleanYes bool
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [provider...]",
		Short: "Delete stored tokens",
		Long: `Delete stored tokens from the token file.

Without arguments a menu lists the providers with stored tokens and asks
which one to delete. Given provider names, all their tokens are deleted.
With --all the token file is removed.

Examples:
  oauthcli clean
  oauthcli clean openstreetmap github
  oauthcli clean --all --yes`,
		RunE: runClean,
	}
	cmd.Flags().BoolVar(&cleanAll, "all", false, "Delete every stored token")
	cmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Do not ask for confirmation with --all")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	if err := requireFileStorage("clean"); err != nil {
		return err
	}
	store := appConfig.FileStore()

	switch {
	case cleanAll && len(args) > 0:
		return errors.New("--all cannot be combined with provider names")
	case cleanAll:
		return cleanEverything(cmd, store)
	case len(args) > 0:
		for _, provider := range args {
			removed, err := store.DeleteProvider(provider)
			if err != nil {
				return err
			}
			printf(cmd, "Deleted %d token(s) of %s\n", removed, provider)
		}
		return nil
	default:
		return cleanInteractive(cmd, store)
	}
}

func cleanEverything(cmd *cobra.Command, store *tokenstore.FileStore) error {
	if !cleanYes {
		prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		ok, err := prompter.Confirm(fmt.Sprintf("Delete all tokens in %s?", store.Path()))
		if err != nil {
			return err
		}
		if !ok {
			printf(cmd, "Okay, doing nothing.\n")
			return nil
		}
	}
	if err := store.Clear(); err != nil {
		return err
	}
	printf(cmd, "Deleted all tokens\n")
	return nil
}

// cleanInteractive shows a numbered menu of providers. 0 removes the whole
// file and anything that is not a number cancels.
func cleanInteractive(cmd *cobra.Command, store *tokenstore.FileStore) error {
	counts, err := store.ProviderCounts()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		printf(cmd, "No tokens stored in %s\n", store.Path())
		return nil
	}
	names, err := store.Providers()
	if err != nil {
		return err
	}

	printf(cmd, "Which provider's tokens to delete:\n\n")
	for i, name := range names {
		printf(cmd, "%d. %s (%d)\n", i+1, name, counts[name])
	}
	printf(cmd, "0. All of them\n")
	printf(cmd, "Q. Cancel\n")

	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	var answer string
	for answer == "" {
		answer, err = prompter.Ask("> ")
		if errors.Is(err, io.EOF) {
			printf(cmd, "Okay, doing nothing.\n")
			return nil
		}
		if err != nil {
			return err
		}
	}

	n, err := strconv.Atoi(answer)
	if err != nil {
		printf(cmd, "Okay, doing nothing.\n")
		return nil
	}
	if n < 0 || n > len(names) {
		return fmt.Errorf("no provider numbered %d", n)
	}
	if n == 0 {
		if err := store.Clear(); err != nil {
			return err
		}
		printf(cmd, "Deleted all tokens\n")
		return nil
	}

	removed, err := store.DeleteProvider(names[n-1])
	if err != nil {
		return err
	}
	printf(cmd, "Deleted %d token(s) of %s\n", removed, names[n-1])
	return nil
}
