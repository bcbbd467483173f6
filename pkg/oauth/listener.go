package oauth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zverik/cli-oauth2/pkg/logging"
)

const (
	// DefaultSuccessMessage is shown in the browser once the redirect is captured.
	DefaultSuccessMessage = "The authentication flow has completed. You may close this window."

	// listenerShutdownTimeout bounds how long a graceful shutdown may wait
	// for the response to reach the browser.
	listenerShutdownTimeout = 5 * time.Second
)

// RedirectListener is a temporary local HTTP endpoint that captures exactly
// one request: the authorization server's redirect back to the CLI.
//
// Any method and path is accepted. The first request is answered with
// 200 text/plain and the configured message; its URI is handed to Wait.
// Requests racing in before shutdown are answered with 410 Gone and ignored.
type RedirectListener struct {
	listener       net.Listener
	server         *http.Server
	successMessage string

	resultCh chan string
	captured sync.Once

	group     *errgroup.Group
	groupCtx  context.Context
	closeOnce sync.Once
	closeErr  error
}

// Listen binds bindHost:port and starts serving in the background.
// It fails fast with *ListenerBindError if the address is taken; it never
// falls back to a different port. Port 0 binds an ephemeral port.
func Listen(bindHost string, port int, successMessage string) (*RedirectListener, error) {
	if successMessage == "" {
		successMessage = DefaultSuccessMessage
	}

	addr := net.JoinHostPort(bindHost, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &ListenerBindError{Addr: addr, Err: err}
	}

	l := &RedirectListener{
		listener:       ln,
		successMessage: successMessage,
		resultCh:       make(chan string, 1),
	}
	l.server = &http.Server{
		Handler:           http.HandlerFunc(l.handleRedirect),
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.server.SetKeepAlivesEnabled(false)

	l.group, l.groupCtx = errgroup.WithContext(context.Background())
	l.group.Go(func() error {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	logging.Debug("RedirectListener", "Listening for authorization redirect on %s", ln.Addr())
	return l, nil
}

// Port returns the bound TCP port.
func (l *RedirectListener) Port() int {
	return l.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns the bound address.
func (l *RedirectListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Wait blocks until the first request arrives and returns its full URI
// (scheme, Host header, path and query). A positive timeout bounds the wait
// and yields *RedirectTimeoutError; zero waits indefinitely. Cancelling ctx
// returns ctx.Err().
//
// The listener is shut down before Wait returns, on every path.
func (l *RedirectListener) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	defer l.Close()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case uri := <-l.resultCh:
		return uri, nil
	case <-timeoutCh:
		logging.Debug("RedirectListener", "No redirect received within %s", timeout)
		return "", &RedirectTimeoutError{Timeout: timeout}
	case <-ctx.Done():
		return "", ctx.Err()
	case <-l.groupCtx.Done():
		// The serve loop died before any request arrived.
		if err := l.Close(); err != nil {
			return "", err
		}
		return "", errors.New("redirect listener stopped unexpectedly")
	}
}

// Close stops the listener and waits for the serve goroutine to exit.
// It is safe to call more than once.
func (l *RedirectListener) Close() error {
	l.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), listenerShutdownTimeout)
		defer cancel()

		if err := l.server.Shutdown(ctx); err != nil {
			// Connections still open after the grace period are dropped.
			_ = l.server.Close()
		}
		_ = l.listener.Close()

		l.closeErr = l.group.Wait()
		logging.Debug("RedirectListener", "Stopped listening on %s", l.listener.Addr())
	})
	return l.closeErr
}

// handleRedirect answers every request; only the first one is captured.
func (l *RedirectListener) handleRedirect(w http.ResponseWriter, r *http.Request) {
	var handled bool
	l.captured.Do(func() {
		handled = true

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, l.successMessage)

		uri := requestURI(r, l.listener.Addr().String())
		logging.Debug("RedirectListener", "Captured %s request to %s", r.Method, r.URL.Path)
		l.resultCh <- uri
	})

	if !handled {
		http.Error(w, "Authorization redirect already received", http.StatusGone)
	}
}

// requestURI reconstructs the full URI the browser requested.
func requestURI(r *http.Request, fallbackHost string) string {
	if r.URL.IsAbs() {
		// Absolute-form request target.
		return r.URL.String()
	}

	host := r.Host
	if host == "" {
		host = fallbackHost
	}

	target := r.RequestURI
	if !strings.HasPrefix(target, "/") {
		target = r.URL.RequestURI()
	}
	return "http://" + host + target
}

// ServeOnce binds bindHost:port, waits for one request and returns its URI.
// It combines Listen and Wait for callers that do not need the bound port
// before the request arrives.
func ServeOnce(ctx context.Context, bindHost string, port int, successMessage string, timeout time.Duration) (string, error) {
	l, err := Listen(bindHost, port, successMessage)
	if err != nil {
		return "", err
	}
	return l.Wait(ctx, timeout)
}
