package oauth

import (
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

func withMockLauncher(t *testing.T, launch func(cmd *exec.Cmd) error) {
	t.Helper()
	originalLauncher := browserLauncher
	browserLauncher = launch
	t.Cleanup(func() { browserLauncher = originalLauncher })
}

func TestOpenBrowser_SupportedPlatforms(t *testing.T) {
	var launched *exec.Cmd
	withMockLauncher(t, func(cmd *exec.Cmd) error {
		launched = cmd
		return nil
	})

	err := OpenBrowser("https://example.com/authorize?client_id=abc")

	switch runtime.GOOS {
	case "linux", "darwin", "windows", "freebsd", "openbsd", "netbsd":
		if err != nil {
			t.Fatalf("Expected no error on supported platform %s, got: %v", runtime.GOOS, err)
		}
		if launched == nil {
			t.Fatal("launcher was not called")
		}
		if got := launched.Args[len(launched.Args)-1]; got != "https://example.com/authorize?client_id=abc" {
			t.Errorf("browser opened with %q", got)
		}
	default:
		if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("Expected 'unsupported platform' error, got: %v", err)
		}
	}
}

func TestOpenBrowser_EmptyURL(t *testing.T) {
	err := OpenBrowser("")
	if err == nil {
		t.Fatal("Expected error for empty URL")
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("Expected 'cannot be empty' in error, got: %s", err.Error())
	}
}

func TestOpenBrowser_InvalidURLScheme(t *testing.T) {
	withMockLauncher(t, func(cmd *exec.Cmd) error {
		t.Errorf("launcher must not be called for %v", cmd.Args)
		return nil
	})

	invalid := []string{
		"file:///etc/passwd",
		"javascript:alert(1)",
		"ftp://example.com/file",
		"example.com",
		"urn:ietf:wg:oauth:2.0:oob",
	}

	for _, u := range invalid {
		t.Run(u, func(t *testing.T) {
			err := OpenBrowser(u)
			if err == nil {
				t.Fatalf("Expected error for %s", u)
			}
			if !strings.Contains(err.Error(), "invalid URL") {
				t.Errorf("Expected 'invalid URL' in error, got: %s", err.Error())
			}
		})
	}
}

func TestOpenBrowser_MalformedURL(t *testing.T) {
	for _, u := range []string{"://missing-scheme", "https://[invalid-ipv6"} {
		if err := OpenBrowser(u); err == nil {
			t.Errorf("Expected error for malformed URL: %s", u)
		}
	}
}

func TestOpenBrowser_LauncherError(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("unsupported platform")
	}
	withMockLauncher(t, func(cmd *exec.Cmd) error {
		return exec.ErrNotFound
	})

	err := OpenBrowser("https://example.com")
	if err == nil {
		t.Fatal("Expected error when browser launcher fails")
	}
	if !strings.Contains(err.Error(), "failed to open browser") {
		t.Errorf("Expected 'failed to open browser' in error, got: %s", err.Error())
	}
}
