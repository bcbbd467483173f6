package cmd

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersCommand(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `clients:
  - provider: openstreetmap
    client_id: osm-client
  - provider: mastodon
    client_id: masto-client
    url: https://mastodon.example
`)

	out, _, err := runCLI(t, "", "providers", "--config-dir", dir)
	require.NoError(t, err)

	assert.Regexp(t, `PROVIDER\s+AUTHORIZE URL\s+API BASE\s+CLIENT ID`, out)
	assert.Regexp(t, `openstreetmap\s+https://www\.openstreetmap\.org/oauth2/authorize\s+https://www\.openstreetmap\.org/api/0\.6/\s+osm-client`, out)
	assert.Regexp(t, `mastodon\s+https://mastodon\.example/oauth2/authorize\s+https://mastodon\.example/api/v1/\s+masto-client`, out)
	assert.Regexp(t, regexp.MustCompile(`(?m)^google\s+https://accounts\.google\.com/\S+\s+-\s+-\s*$`), out)
}
