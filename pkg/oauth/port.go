package oauth

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/Zverik/cli-oauth2/pkg/logging"
)

const (
	// DefaultPortRangeStart is the first port scanned when no range is given.
	DefaultPortRangeStart = 8080

	// defaultPortRangeSize is the scan window used when only a start port is given.
	defaultPortRangeSize = 100
)

// PortRange is a half-open range [Start, Stop) of candidate ports.
// The zero value means [8080, 8180); a range with only Start set scans 100 ports.
type PortRange struct {
	Start int
	Stop  int
}

// SinglePort returns a range holding only port.
func SinglePort(port int) PortRange {
	return PortRange{Start: port, Stop: port + 1}
}

// normalize fills in the defaults.
func (r PortRange) normalize() PortRange {
	if r.Start <= 0 {
		r.Start = DefaultPortRangeStart
	}
	if r.Stop <= r.Start {
		r.Stop = r.Start + defaultPortRangeSize
	}
	return r
}

// String renders the range the way ParsePortRange accepts it.
func (r PortRange) String() string {
	r = r.normalize()
	return fmt.Sprintf("%d-%d", r.Start, r.Stop)
}

// ParsePortRange parses "START-STOP" (STOP exclusive) or a single "PORT".
func ParsePortRange(s string) (PortRange, error) {
	startStr, stopStr, hasStop := strings.Cut(strings.TrimSpace(s), "-")

	start, err := strconv.Atoi(startStr)
	if err != nil || start <= 0 || start > 65535 {
		return PortRange{}, fmt.Errorf("invalid port range %q: bad start port", s)
	}
	if !hasStop {
		return SinglePort(start), nil
	}

	stop, err := strconv.Atoi(stopStr)
	if err != nil || stop <= start || stop > 65536 {
		return PortRange{}, fmt.Errorf("invalid port range %q: stop must be greater than start", s)
	}
	return PortRange{Start: start, Stop: stop}, nil
}

// FindOpenPort returns the first port in r, scanned in increasing order,
// on which a loopback TCP listener can be opened. The probe socket is closed
// right away, so the port may be taken again before the caller binds it;
// the redirect listener reports that as a *ListenerBindError.
func FindOpenPort(r PortRange) (int, error) {
	r = r.normalize()

	for port := r.Start; port < r.Stop; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = ln.Close()

		logging.Debug("PortSelector", "Selected open port %d from range %s", port, r)
		return port, nil
	}

	return 0, &NoOpenPortError{Start: r.Start, Stop: r.Stop}
}
