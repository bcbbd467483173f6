package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_APIURL(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		api      string
		want     string
	}{
		{"osm relative", OpenStreetMap(""), "user/details", "https://www.openstreetmap.org/api/0.6/user/details"},
		{"osm leading slash", OpenStreetMap("https://osm.example/"), "/user/details", "https://osm.example/api/0.6/user/details"},
		{"osm dev", OpenStreetMapDev(), "map", "https://api06.dev.openstreetmap.org/api/0.6/map"},
		{"github", GitHub(), "/user", "https://api.github.com/user"},
		{"mastodon", Mastodon("https://mastodon.social/"), "accounts/verify_credentials", "https://mastodon.social/api/v1/accounts/verify_credentials"},
		{"reddit", Reddit(), "api/v1/me", "https://www.reddit.com/api/v1/me"},
		{"google passes through", Google(), "https://www.googleapis.com/oauth2/v3/userinfo", "https://www.googleapis.com/oauth2/v3/userinfo"},
		{"absolute on prefixed provider", GitHub(), "https://uploads.github.com/x", "https://uploads.github.com/x"},
		{"no base keeps relative", Facebook(), "me", "me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.APIURL(tt.api))
		})
	}
}

func TestProvider_Endpoints(t *testing.T) {
	osm := OpenStreetMap("")
	assert.Equal(t, "openstreetmap", osm.ID)
	assert.Equal(t, "https://www.openstreetmap.org/oauth2/authorize", osm.AuthorizeURL)
	assert.Equal(t, "https://www.openstreetmap.org/oauth2/token", osm.TokenURL)
	assert.Equal(t, "127.0.0.1", osm.DefaultHost)

	gitlab := GitLab("https://gitlab.example.org/")
	assert.Equal(t, "https://gitlab.example.org/oauth/authorize", gitlab.AuthorizeURL)
	assert.Equal(t, "https://gitlab.example.org/oauth/token", gitlab.TokenURL)
	assert.Equal(t, "https://gitlab.com/oauth/token", GitLab("").TokenURL)

	ep := GitHub().Endpoint()
	assert.Equal(t, "https://github.com/login/oauth/authorize", ep.AuthURL)
	assert.Equal(t, "https://github.com/login/oauth/access_token", ep.TokenURL)
}

func TestLookupProvider(t *testing.T) {
	for _, id := range ProviderIDs() {
		t.Run(id, func(t *testing.T) {
			p, err := LookupProvider(id, "https://server.example")
			require.NoError(t, err)
			assert.Equal(t, id, p.ID)
			assert.NotEmpty(t, p.AuthorizeURL)
			assert.NotEmpty(t, p.TokenURL)
		})
	}

	_, err := LookupProvider("mastodon", "")
	assert.Error(t, err)

	_, err = LookupProvider("myspace", "")
	assert.ErrorContains(t, err, "unknown provider")
}

func TestProviderIDs_ReturnsCopy(t *testing.T) {
	ids := ProviderIDs()
	ids[0] = "changed"
	assert.Equal(t, "openstreetmap", ProviderIDs()[0])
}
