package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/internal/config"
)

var tokensNoHeaders bool

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "List providers with stored tokens",
		Long: `List the providers that have tokens in the token file, with the number
of stored tokens (one per client ID) for each.

Tokens in the operating system keyring cannot be enumerated.`,
		Args: cobra.NoArgs,
		RunE: runTokens,
	}
	cmd.Flags().BoolVar(&tokensNoHeaders, "no-headers", false, "Omit the header row")
	return cmd
}

func runTokens(cmd *cobra.Command, args []string) error {
	if err := requireFileStorage("list"); err != nil {
		return err
	}

	store := appConfig.FileStore()
	counts, err := store.ProviderCounts()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		printf(cmd, "No tokens stored in %s\n", store.Path())
		return nil
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	table := cli.NewTable(cmd.OutOrStdout(), "PROVIDER", "TOKENS")
	table.SetNoHeaders(tokensNoHeaders)
	for _, name := range names {
		table.AddRow(name, strconv.Itoa(counts[name]))
	}
	table.Render()
	return nil
}

// requireFileStorage rejects commands that enumerate tokens when another
// backend is selected.
func requireFileStorage(action string) error {
	switch appConfig.Storage {
	case config.StorageFile, "":
		return nil
	default:
		return fmt.Errorf("cannot %s tokens in %q storage: only the token file can be enumerated", action, appConfig.Storage)
	}
}
