package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/pkg/oauth"
)

var (
	requestClient      clientFlags
	requestMethod      string
	requestData        string
	requestContentType string
	requestInclude     bool
)

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request <provider> <api>",
		Short: "Send an authorized request to a provider's API",
		Long: `Send a request authorized with the stored token and print the response body.

<api> is a path relative to the provider's API base, or an absolute URL.
An expired token is refreshed when the provider issued a refresh token.
A body of "-" is read from standard input.

Examples:
  oauthcli request openstreetmap user/details.json --client-id abc123
  oauthcli request github user
  oauthcli request mastodon statuses --url https://mastodon.social -X POST -d 'status=hi'`,
		Args: cobra.ExactArgs(2),
		RunE: runRequest,
	}

	requestClient = clientFlags{}
	requestClient.register(cmd, false)

	flags := cmd.Flags()
	flags.StringVarP(&requestMethod, "request", "X", http.MethodGet, "HTTP method")
	flags.StringVarP(&requestData, "data", "d", "", "Request body")
	flags.StringVar(&requestContentType, "content-type", "", "Content type of the body (default application/x-www-form-urlencoded when a body is given)")
	flags.BoolVarP(&requestInclude, "include", "i", false, "Print the response status line and headers")
	return cmd
}

func runRequest(cmd *cobra.Command, args []string) error {
	client, err := requestClient.resolve(args[0])
	if err != nil {
		return err
	}
	flow, err := newFlow(cmd, client)
	if err != nil {
		return err
	}
	if !flow.Authorized() {
		return &cli.AuthRequiredError{Provider: client.Provider, ClientID: client.ClientID}
	}

	var body io.Reader
	contentType := requestContentType
	switch requestData {
	case "":
	case "-":
		body = cmd.InOrStdin()
	default:
		body = strings.NewReader(requestData)
	}
	if body != nil && contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}

	method := strings.ToUpper(requestMethod)
	resp, err := sendRequest(cmd, flow, method, args[1], contentType, body)
	if err != nil {
		var exchangeErr *oauth.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			return &cli.AuthExpiredError{Provider: client.Provider, ClientID: client.ClientID, Detail: "refresh failed"}
		}
		if connErr := cli.ClassifyConnectionError(err, flow.Provider().APIURL(args[1])); connErr != nil {
			return connErr
		}
		return err
	}
	defer resp.Body.Close()

	if challenge := oauth.ChallengeFromResponse(resp); challenge.TokenRejected() {
		return &cli.AuthExpiredError{Provider: client.Provider, ClientID: client.ClientID, Detail: challenge.ErrorDescription}
	}

	out := cmd.OutOrStdout()
	if requestInclude {
		fmt.Fprintf(out, "%s %s\n", resp.Proto, resp.Status)
		if err := resp.Header.Write(out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", method, args[1], resp.Status)
	}
	return nil
}

// sendRequest picks the flow helper that can carry a content type for method.
func sendRequest(cmd *cobra.Command, flow *oauth.Flow, method, api, contentType string, body io.Reader) (*http.Response, error) {
	ctx := cmd.Context()
	switch method {
	case http.MethodPost:
		return flow.Post(ctx, api, contentType, body)
	case http.MethodPut:
		return flow.Put(ctx, api, contentType, body)
	case http.MethodPatch:
		return flow.Patch(ctx, api, contentType, body)
	default:
		return flow.Request(ctx, method, api, body)
	}
}
