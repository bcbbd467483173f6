package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

func TestCleanInteractive(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOut    string
		wantTokens []string
		wantErr    bool
	}{
		{
			name:       "delete one provider after empty answer",
			input:      "\n2\n",
			wantOut:    "Deleted 2 token(s) of openstreetmap",
			wantTokens: []string{"github/c"},
		},
		{
			name:       "cancel",
			input:      "q\n",
			wantOut:    "Okay, doing nothing.",
			wantTokens: []string{"github/c", "openstreetmap/a", "openstreetmap/b"},
		},
		{
			name:       "end of input",
			input:      "",
			wantOut:    "Okay, doing nothing.",
			wantTokens: []string{"github/c", "openstreetmap/a", "openstreetmap/b"},
		},
		{
			name:       "all of them",
			input:      "0\n",
			wantOut:    "Deleted all tokens",
			wantTokens: []string{},
		},
		{
			name:       "number out of range",
			input:      "7\n",
			wantErr:    true,
			wantTokens: []string{"github/c", "openstreetmap/a", "openstreetmap/b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			seedTokens(t, dir)

			out, _, err := runCLI(t, tt.input, "clean", "--config-dir", dir)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Contains(t, out, tt.wantOut)
			}
			assert.Contains(t, out, "Which provider's tokens to delete:\n\n1. github (1)\n2. openstreetmap (2)\n0. All of them\nQ. Cancel\n")

			var keys []string
			for key := range readTokens(t, dir) {
				keys = append(keys, key)
			}
			assert.ElementsMatch(t, tt.wantTokens, keys)
		})
	}
}

func TestCleanNamedProviders(t *testing.T) {
	dir := t.TempDir()
	seedTokens(t, dir)

	out, _, err := runCLI(t, "", "clean", "--config-dir", dir, "github", "mastodon")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 token(s) of github")
	assert.Contains(t, out, "Deleted 0 token(s) of mastodon")

	tokens := readTokens(t, dir)
	assert.Len(t, tokens, 2)
	assert.NotContains(t, tokens, "github/c")
}

func TestCleanAll(t *testing.T) {
	t.Run("confirmed with flag", func(t *testing.T) {
		dir := t.TempDir()
		seedTokens(t, dir)

		_, _, err := runCLI(t, "", "clean", "--config-dir", dir, "--all", "--yes")
		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(dir, tokenstore.DefaultFileName))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("declined at prompt", func(t *testing.T) {
		dir := t.TempDir()
		seedTokens(t, dir)

		out, _, err := runCLI(t, "n\n", "clean", "--config-dir", dir, "--all")
		require.NoError(t, err)
		assert.Contains(t, out, "Okay, doing nothing.")
		assert.Len(t, readTokens(t, dir), 3)
	})

	t.Run("confirmed at prompt", func(t *testing.T) {
		dir := t.TempDir()
		seedTokens(t, dir)

		_, _, err := runCLI(t, "yes\n", "clean", "--config-dir", dir, "--all")
		require.NoError(t, err)
		assert.Empty(t, readTokens(t, dir))
	})

	t.Run("combined with providers", func(t *testing.T) {
		_, _, err := runCLI(t, "", "clean", "--config-dir", t.TempDir(), "--all", "github")
		require.Error(t, err)
	})
}

func TestCleanNothingStored(t *testing.T) {
	out, _, err := runCLI(t, "", "clean", "--config-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No tokens stored")
}
