package oauth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Provider describes an OAuth2 authorization server and its API.
// Providers differ only in configuration, so they are plain values.
type Provider struct {
	// ID names the provider in token keys, e.g. "github".
	ID string

	AuthorizeURL string
	TokenURL     string

	// APIBase is prefixed to relative API paths by APIURL. Empty means
	// API paths are used as given.
	APIBase string

	// DefaultScopes are requested when the caller supplies none.
	DefaultScopes []string

	// DefaultHost is the redirect host used when the caller supplies none.
	// Empty means "localhost".
	DefaultHost string

	// AuthStyle selects how the client secret is sent to the token endpoint.
	AuthStyle oauth2.AuthStyle
}

// Endpoint returns the provider endpoints in golang.org/x/oauth2 form.
func (p Provider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.AuthorizeURL,
		TokenURL:  p.TokenURL,
		AuthStyle: p.AuthStyle,
	}
}

// APIURL turns an API path into a full URL. Absolute http(s) URLs and
// providers without an APIBase return api unchanged.
func (p Provider) APIURL(api string) string {
	if p.APIBase == "" || strings.HasPrefix(api, "http://") || strings.HasPrefix(api, "https://") {
		return api
	}
	return strings.TrimRight(p.APIBase, "/") + "/" + strings.TrimLeft(api, "/")
}

const (
	defaultOpenStreetMapURL = "https://www.openstreetmap.org"
	openStreetMapDevURL     = "https://api06.dev.openstreetmap.org"
	defaultGitLabURL        = "https://gitlab.com"
)

// OpenStreetMap returns the provider for an OpenStreetMap server.
// An empty url means the main www.openstreetmap.org instance.
func OpenStreetMap(url string) Provider {
	return openStreetMap("openstreetmap", url)
}

// OpenStreetMapDev returns the provider for the OpenStreetMap development server.
func OpenStreetMapDev() Provider {
	return openStreetMap("openstreetmap_dev", openStreetMapDevURL)
}

func openStreetMap(id, url string) Provider {
	if url == "" {
		url = defaultOpenStreetMapURL
	}
	url = strings.TrimRight(url, "/")
	return Provider{
		ID:            id,
		AuthorizeURL:  url + "/oauth2/authorize",
		TokenURL:      url + "/oauth2/token",
		APIBase:       url + "/api/0.6/",
		DefaultScopes: []string{"read_prefs"},
		// OpenStreetMap only accepts loopback redirects registered by IP.
		DefaultHost: "127.0.0.1",
	}
}

// Google returns the Google provider.
func Google() Provider {
	return Provider{
		ID:           "google",
		AuthorizeURL: "https://accounts.google.com/o/oauth2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
	}
}

// GitHub returns the GitHub provider.
func GitHub() Provider {
	return Provider{
		ID:           "github",
		AuthorizeURL: "https://github.com/login/oauth/authorize",
		TokenURL:     "https://github.com/login/oauth/access_token",
		APIBase:      "https://api.github.com/",
	}
}

// GitLab returns the provider for a GitLab instance. An empty url means gitlab.com.
func GitLab(url string) Provider {
	if url == "" {
		url = defaultGitLabURL
	}
	url = strings.TrimRight(url, "/")
	return Provider{
		ID:           "gitlab",
		AuthorizeURL: url + "/oauth/authorize",
		TokenURL:     url + "/oauth/token",
	}
}

// Mastodon returns the provider for the Mastodon server at server.
func Mastodon(server string) Provider {
	server = strings.TrimRight(server, "/")
	return Provider{
		ID:           "mastodon",
		AuthorizeURL: server + "/oauth2/authorize",
		TokenURL:     server + "/oauth2/token",
		APIBase:      server + "/api/v1/",
	}
}

// Reddit returns the Reddit provider.
func Reddit() Provider {
	return Provider{
		ID:           "reddit",
		AuthorizeURL: "https://www.reddit.com/oauth2/authorize",
		TokenURL:     "https://www.reddit.com/oauth2/access_token",
		APIBase:      "https://www.reddit.com/",
	}
}

// Facebook returns the Facebook provider.
func Facebook() Provider {
	return Provider{
		ID:           "facebook",
		AuthorizeURL: "https://www.facebook.com/dialog/oauth",
		TokenURL:     "https://graph.facebook.com/oauth/access_token",
	}
}

// LinkedIn returns the LinkedIn provider.
func LinkedIn() Provider {
	return Provider{
		ID:           "linkedin",
		AuthorizeURL: "https://www.linkedin.com/uas/oauth2/authorization",
		TokenURL:     "https://www.linkedin.com/uas/oauth2/accessToken",
	}
}

// providerIDs lists the built-in providers in display order.
var providerIDs = []string{
	"openstreetmap",
	"openstreetmap_dev",
	"google",
	"github",
	"gitlab",
	"mastodon",
	"reddit",
	"facebook",
	"linkedin",
}

// ProviderIDs returns the IDs of the built-in providers.
func ProviderIDs() []string {
	return append([]string(nil), providerIDs...)
}

// LookupProvider returns the built-in provider with the given ID.
// baseURL selects the server for self-hostable providers (openstreetmap,
// gitlab, mastodon) and is required for mastodon; other providers ignore it.
func LookupProvider(id, baseURL string) (Provider, error) {
	switch id {
	case "openstreetmap":
		return OpenStreetMap(baseURL), nil
	case "openstreetmap_dev":
		return OpenStreetMapDev(), nil
	case "google":
		return Google(), nil
	case "github":
		return GitHub(), nil
	case "gitlab":
		return GitLab(baseURL), nil
	case "mastodon":
		if baseURL == "" {
			return Provider{}, fmt.Errorf("provider mastodon requires a server URL")
		}
		return Mastodon(baseURL), nil
	case "reddit":
		return Reddit(), nil
	case "facebook":
		return Facebook(), nil
	case "linkedin":
		return LinkedIn(), nil
	default:
		return Provider{}, fmt.Errorf("unknown provider %q (known: %s)", id, strings.Join(providerIDs, ", "))
	}
}
