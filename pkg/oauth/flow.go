package oauth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/Zverik/cli-oauth2/pkg/logging"
	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

const (
	// OOBRedirectURI is the out-of-band redirect URI used for manual code entry.
	OOBRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

	// DefaultPromptMessage is printed with the authorization URL in place of %s.
	DefaultPromptMessage = "Please visit this URL to authorize this application: %s"

	// DefaultCodeMessage asks for the code in manual mode.
	DefaultCodeMessage = "Enter the authorization code: "

	defaultRedirectHost = "localhost"
)

// reservedAuthParams are set by the flow itself and cannot be overridden
// through extra authorization parameters.
var reservedAuthParams = map[string]bool{
	"client_id":             true,
	"response_type":         true,
	"redirect_uri":          true,
	"scope":                 true,
	"state":                 true,
	"code_challenge":        true,
	"code_challenge_method": true,
}

// FlowState is the position of a Flow in the authorization lifecycle.
type FlowState int

const (
	// Idle means no authorization has been attempted yet.
	Idle FlowState = iota
	// CheckingExistingToken means a stored token is being validated.
	CheckingExistingToken
	// Satisfied means an existing token was accepted and no flow ran.
	Satisfied
	// NeedsAuthorization means the user has to authorize the client.
	NeedsAuthorization
	// BuildingRequest means the PKCE pair, redirect URI and URL are being prepared.
	BuildingRequest
	// AwaitingUserAction means the user is authorizing in the browser.
	AwaitingUserAction
	// ExchangingCode means the authorization code is being traded for a token.
	ExchangingCode
	// Complete means a new token was obtained.
	Complete
	// Failed means the last attempt ended with an error.
	Failed
)

// String returns a human-readable representation of the state.
func (s FlowState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case CheckingExistingToken:
		return "CheckingExistingToken"
	case Satisfied:
		return "Satisfied"
	case NeedsAuthorization:
		return "NeedsAuthorization"
	case BuildingRequest:
		return "BuildingRequest"
	case AwaitingUserAction:
		return "AwaitingUserAction"
	case ExchangingCode:
		return "ExchangingCode"
	case Complete:
		return "Complete"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("FlowState(%d)", int(s))
	}
}

// TokenTest probes whether the current token still works, typically by
// calling a cheap API endpoint. An error or a 4xx status means it does not.
type TokenTest func(ctx context.Context, f *Flow) (*http.Response, error)

// Config configures a Flow.
type Config struct {
	Provider     Provider
	ClientID     string
	ClientSecret string

	// Scopes requested; empty means Provider.DefaultScopes.
	Scopes []string

	// Store persists tokens; nil means NoneStore.
	Store tokenstore.Store

	// HTTPClient is used for token and API requests; nil means http.DefaultClient.
	HTTPClient *http.Client

	// Out receives prompts; nil means os.Stderr.
	Out io.Writer

	// In supplies the manually entered code; nil means os.Stdin.
	In io.Reader

	// Browser opens the authorization URL; nil means OpenBrowser.
	Browser func(url string) error
}

// Options are shared by AuthServer and AuthCode.
type Options struct {
	// Force runs the flow even when a token is stored.
	Force bool

	// TokenTest validates a stored token before it is accepted.
	TokenTest TokenTest

	// PromptMessage is printed with %s replaced by the authorization URL.
	PromptMessage string

	// Quiet suppresses the prompt.
	Quiet bool

	// NoBrowser skips opening the browser.
	NoBrowser bool

	// Audience is sent with the token request when set.
	Audience string

	// ExtraParams are added to the authorization URL.
	ExtraParams map[string]string
}

// ServerOptions configures AuthServer.
type ServerOptions struct {
	Options

	// Host is the redirect URI host; empty means Provider.DefaultHost or "localhost".
	Host string

	// BindAddr is the address to listen on; empty means Host.
	BindAddr string

	// Port is the listener port when Ports is nil; 0 means 8080.
	Port int

	// Ports, when set, is scanned for the first free port.
	Ports *PortRange

	// SuccessMessage is shown in the browser after the redirect.
	SuccessMessage string

	// NoTrailingSlash drops the trailing "/" from the redirect URI.
	NoTrailingSlash bool

	// Timeout bounds the wait for the redirect; 0 waits indefinitely.
	Timeout time.Duration

	// OnListening is called with the redirect URI once the listener is ready.
	OnListening func(redirectURI string)
}

// CodeOptions configures AuthCode.
type CodeOptions struct {
	Options

	// CodeMessage prompts for the code.
	CodeMessage string

	// RedirectURI overrides the out-of-band redirect URI.
	RedirectURI string
}

// Flow obtains and holds the token for one provider and client ID.
// A Flow is meant to be driven from one goroutine; the token it holds may be
// read concurrently, for example by requests made through Client.
type Flow struct {
	provider     Provider
	clientID     string
	clientSecret string
	scopes       []string
	store        tokenstore.Store
	httpClient   *http.Client
	out          io.Writer
	in           *bufio.Reader
	browser      func(string) error

	mu          sync.Mutex
	token       *oauth2.Token
	state       FlowState
	redirectURI string
	authState   string
	pkce        *PKCEChallenge
}

// New creates a flow and loads the stored token, if any. A token that cannot
// be loaded, or that has expired without a refresh token, is treated as absent.
func New(cfg Config) *Flow {
	f := &Flow{
		provider:     cfg.Provider,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scopes:       cfg.Scopes,
		store:        cfg.Store,
		httpClient:   cfg.HTTPClient,
		out:          cfg.Out,
		browser:      cfg.Browser,
	}
	if len(f.scopes) == 0 {
		f.scopes = cfg.Provider.DefaultScopes
	}
	if f.store == nil {
		f.store = tokenstore.NoneStore{}
	}
	if f.out == nil {
		f.out = os.Stderr
	}
	in := cfg.In
	if in == nil {
		in = os.Stdin
	}
	f.in = bufio.NewReader(in)
	if f.browser == nil {
		f.browser = OpenBrowser
	}

	f.loadToken()
	return f
}

func (f *Flow) key() string {
	return tokenstore.Key(f.provider.ID, f.clientID)
}

func (f *Flow) loadToken() {
	rec, err := f.store.GetToken(f.provider.ID, f.clientID)
	if err != nil {
		logging.WarnWithErr("OAuthFlow", err, "Failed to load stored token for %s, treating it as absent", f.key())
		return
	}
	if rec == nil {
		return
	}

	tok := RecordToToken(rec)
	if tok.AccessToken == "" {
		logging.Warn("OAuthFlow", "Stored token for %s has no access token, ignoring it", f.key())
		return
	}
	if expiredWithoutRefresh(tok, time.Now()) {
		logging.Debug("OAuthFlow", "Stored token for %s expired at %s and cannot be refreshed", f.key(), tok.Expiry.Format(time.RFC3339))
		return
	}

	f.token = tok
	logging.Debug("OAuthFlow", "Loaded stored token for %s", f.key())
}

// Provider returns the provider the flow authorizes against.
func (f *Flow) Provider() Provider {
	return f.provider
}

// ClientID returns the client ID.
func (f *Flow) ClientID() string {
	return f.clientID
}

// Authorized reports whether the flow holds a token.
func (f *Flow) Authorized() bool {
	return f.Token() != nil
}

// Token returns the current token, or nil.
func (f *Flow) Token() *oauth2.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// State returns the current flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// RedirectURI returns the redirect URI of the last authorization request.
func (f *Flow) RedirectURI() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirectURI
}

func (f *Flow) setState(s FlowState) {
	f.mu.Lock()
	prev := f.state
	f.state = s
	f.mu.Unlock()
	if prev != s {
		logging.Debug("OAuthFlow", "%s: %s -> %s", f.key(), prev, s)
	}
}

// fail moves the flow to Failed and returns err.
func (f *Flow) fail(err error) error {
	f.setState(Failed)
	return err
}

// Logout deletes the stored token. The token held in memory is kept, so
// requests already in progress still work.
func (f *Flow) Logout() error {
	if err := f.store.SetToken(f.provider.ID, f.clientID, nil); err != nil {
		return asStorageError("delete", f.key(), err)
	}
	logging.Info("OAuthFlow", "Removed stored token for %s", f.key())
	return nil
}

// oauthConfig builds the x/oauth2 client configuration.
func (f *Flow) oauthConfig(redirectURI string) *oauth2.Config {
	endpoint := f.provider.Endpoint()
	if endpoint.AuthStyle == oauth2.AuthStyleAutoDetect && f.clientSecret == "" {
		// Public clients have no secret to put in a Basic header.
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return &oauth2.Config{
		ClientID:     f.clientID,
		ClientSecret: f.clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURI,
		Scopes:       f.scopes,
	}
}


// checkAuth decides whether a new authorization is needed. It returns true
// when the stored token is accepted.
func (f *Flow) checkAuth(ctx context.Context, opts Options) bool {
	f.setState(CheckingExistingToken)

	if opts.Force || !f.Authorized() {
		f.setState(NeedsAuthorization)
		return false
	}

	if opts.TokenTest != nil {
		resp, err := opts.TokenTest(ctx, f)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		switch {
		case err != nil:
			logging.Info("OAuthFlow", "Token test for %s failed, reauthorizing: %v", f.key(), err)
			f.setState(NeedsAuthorization)
			return false
		case resp != nil && resp.StatusCode/100 == 4:
			logging.Info("OAuthFlow", "Token test for %s returned %d, reauthorizing", f.key(), resp.StatusCode)
			f.setState(NeedsAuthorization)
			return false
		}
	}

	f.setState(Satisfied)
	return true
}

// AuthorizationURL starts an authorization attempt: it generates a fresh PKCE
// pair and state and returns the URL the user has to visit along with the state.
// Extra parameters never override the ones the flow sets itself.
func (f *Flow) AuthorizationURL(redirectURI string, extra map[string]string) (authURL, state string) {
	pkce := GeneratePKCE()
	state = GenerateState()

	f.mu.Lock()
	f.pkce = pkce
	f.authState = state
	f.redirectURI = redirectURI
	f.mu.Unlock()

	opts := make([]oauth2.AuthCodeOption, 0, len(extra)+2)
	for k, v := range extra {
		if reservedAuthParams[k] {
			logging.Warn("OAuthFlow", "Ignoring extra authorization parameter %q: it is set by the flow", k)
			continue
		}
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	opts = append(opts,
		oauth2.SetAuthURLParam("code_challenge", pkce.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.CodeChallengeMethod),
	)

	return f.oauthConfig(redirectURI).AuthCodeURL(state, opts...), state
}

// Exchange trades an authorization code for a token, using the verifier and
// redirect URI of the last AuthorizationURL call, and stores the token.
//
// On failure it returns *TokenExchangeError and the store is untouched. If
// only storing fails, the token is returned together with a
// *tokenstore.StorageError and stays usable in memory.
func (f *Flow) Exchange(ctx context.Context, code, audience string) (*oauth2.Token, error) {
	f.mu.Lock()
	pkce := f.pkce
	redirectURI := f.redirectURI
	f.mu.Unlock()

	if pkce == nil {
		return nil, f.fail(errors.New("no authorization request in progress"))
	}

	f.setState(ExchangingCode)

	opts := []oauth2.AuthCodeOption{oauth2.VerifierOption(pkce.CodeVerifier)}
	if audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", audience))
	}

	ctx, recorder := f.recordingContext(ctx)
	tok, err := f.oauthConfig(redirectURI).Exchange(ctx, code, opts...)
	if err != nil {
		return nil, f.fail(&TokenExchangeError{Err: err})
	}

	f.mu.Lock()
	f.token = tok
	f.pkce = nil
	f.mu.Unlock()
	f.setState(Complete)
	logging.Info("OAuthFlow", "Obtained token for %s", f.key())

	if err := f.saveToken(tok, recorder.take()); err != nil {
		return tok, err
	}
	return tok, nil
}

// saveToken persists tok together with the token endpoint's response fields.
// Failures are logged and returned as *tokenstore.StorageError.
func (f *Flow) saveToken(tok *oauth2.Token, response map[string]any) error {
	if err := f.store.SetToken(f.provider.ID, f.clientID, TokenToRecord(tok, response)); err != nil {
		err = asStorageError("set", f.key(), err)
		logging.Error("OAuthFlow", err, "Failed to store token for %s, keeping it in memory only", f.key())
		return err
	}
	return nil
}

func asStorageError(op, key string, err error) error {
	var storageErr *tokenstore.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &tokenstore.StorageError{Op: op, Key: key, Err: err}
}

// AuthServer authorizes through a temporary local HTTP listener that
// receives the provider's redirect. It returns without any network round
// trip when an acceptable token is already stored.
func (f *Flow) AuthServer(ctx context.Context, opts ServerOptions) error {
	if f.checkAuth(ctx, opts.Options) {
		return nil
	}
	f.setState(BuildingRequest)

	host := opts.Host
	if host == "" {
		host = f.provider.DefaultHost
	}
	if host == "" {
		host = defaultRedirectHost
	}
	bindAddr := opts.BindAddr
	if bindAddr == "" {
		bindAddr = host
	}

	port := opts.Port
	if opts.Ports != nil {
		p, err := FindOpenPort(*opts.Ports)
		if err != nil {
			return f.fail(err)
		}
		port = p
	} else if port == 0 {
		port = DefaultPortRangeStart
	}

	listener, err := Listen(bindAddr, port, opts.SuccessMessage)
	if err != nil {
		return f.fail(err)
	}
	defer listener.Close()

	redirectURI := "http://" + net.JoinHostPort(host, strconv.Itoa(listener.Port()))
	if !opts.NoTrailingSlash {
		redirectURI += "/"
	}

	authURL, state := f.AuthorizationURL(redirectURI, opts.ExtraParams)
	f.setState(AwaitingUserAction)
	f.promptUser(authURL, opts.Options)

	if opts.OnListening != nil {
		opts.OnListening(redirectURI)
	}

	captured, err := listener.Wait(ctx, opts.Timeout)
	if err != nil {
		return f.fail(err)
	}

	code, err := parseRedirect(captured, state)
	if err != nil {
		return f.fail(err)
	}

	_, err = f.Exchange(ctx, code, opts.Audience)
	return err
}

// AuthCode authorizes by having the user paste the code shown by the provider.
// A pasted redirect URL is accepted as well.
func (f *Flow) AuthCode(ctx context.Context, opts CodeOptions) error {
	if f.checkAuth(ctx, opts.Options) {
		return nil
	}
	f.setState(BuildingRequest)

	redirectURI := opts.RedirectURI
	if redirectURI == "" {
		redirectURI = OOBRedirectURI
	}

	authURL, state := f.AuthorizationURL(redirectURI, opts.ExtraParams)
	f.setState(AwaitingUserAction)
	f.promptUser(authURL, opts.Options)

	message := opts.CodeMessage
	if message == "" {
		message = DefaultCodeMessage
	}
	input, err := f.readCode(ctx, message)
	if err != nil {
		return f.fail(err)
	}

	code := input
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if code, err = parseRedirect(input, state); err != nil {
			return f.fail(err)
		}
	}

	_, err = f.Exchange(ctx, code, opts.Audience)
	return err
}

// promptUser opens the browser and prints the prompt. A browser that cannot
// be opened is not an error; the printed URL still works.
func (f *Flow) promptUser(authURL string, opts Options) {
	if !opts.NoBrowser {
		if err := f.browser(authURL); err != nil {
			logging.WarnWithErr("OAuthFlow", err, "Could not open a browser")
		}
	}
	if opts.Quiet {
		return
	}

	message := opts.PromptMessage
	if message == "" {
		message = DefaultPromptMessage
	}
	if strings.Contains(message, "%s") {
		fmt.Fprintln(f.out, strings.Replace(message, "%s", authURL, 1))
	} else {
		fmt.Fprintln(f.out, message)
		fmt.Fprintln(f.out, authURL)
	}
}

// readCode prompts until a non-empty line is entered.
func (f *Flow) readCode(ctx context.Context, message string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(f.out, message)

		line, err := f.in.ReadString('\n')
		if code := strings.TrimSpace(line); code != "" {
			return code, nil
		}
		if err != nil {
			fmt.Fprintln(f.out)
			if errors.Is(err, io.EOF) {
				return "", ErrNoCode
			}
			return "", fmt.Errorf("failed to read authorization code: %w", err)
		}
	}
}

// parseRedirect extracts the authorization code from the captured redirect URI.
func parseRedirect(rawURI, expectedState string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URI: %w", err)
	}
	query := u.Query()

	if errCode := query.Get("error"); errCode != "" {
		return "", &AuthorizationDeniedError{Code: errCode, Description: query.Get("error_description")}
	}
	if query.Get("state") != expectedState {
		return "", ErrStateMismatch
	}

	code := query.Get("code")
	if code == "" {
		return "", &AuthorizationDeniedError{Code: "missing_code", Description: "redirect carried no authorization code"}
	}
	return code, nil
}
