package oauth

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// occupyPort holds an ephemeral loopback port for the duration of the test.
func occupyPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

// freePort returns a loopback port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestFindOpenPort_ReturnsBindablePortInRange(t *testing.T) {
	busy := occupyPort(t)

	// The range starts at an occupied port, so the scan must skip it.
	r := PortRange{Start: busy, Stop: busy + 50}
	if r.Stop > 65536 {
		t.Skip("ephemeral port too close to the top of the range")
	}

	port, err := FindOpenPort(r)
	if err != nil {
		t.Skipf("no free port near %d: %v", busy, err)
	}

	assert.Greater(t, port, busy)
	assert.Less(t, port, r.Stop)

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err, "selected port must be immediately bindable")
	ln.Close()
}

func TestFindOpenPort_SingleFreePort(t *testing.T) {
	port := freePort(t)

	got, err := FindOpenPort(SinglePort(port))
	require.NoError(t, err)
	assert.Equal(t, port, got)
}

func TestFindOpenPort_Exhausted(t *testing.T) {
	busy := occupyPort(t)

	_, err := FindOpenPort(SinglePort(busy))

	var noPort *NoOpenPortError
	require.ErrorAs(t, err, &noPort)
	assert.Equal(t, busy, noPort.Start)
	assert.Equal(t, busy+1, noPort.Stop)
}

func TestPortRange_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PortRange
		want PortRange
	}{
		{"zero value", PortRange{}, PortRange{8080, 8180}},
		{"start only", PortRange{Start: 9000}, PortRange{9000, 9100}},
		{"explicit", PortRange{Start: 9000, Stop: 9005}, PortRange{9000, 9005}},
		{"single", SinglePort(3000), PortRange{3000, 3001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize())
		})
	}
}

func TestParsePortRange(t *testing.T) {
	tests := []struct {
		in      string
		want    PortRange
		wantErr bool
	}{
		{"8080-8180", PortRange{8080, 8180}, false},
		{"9000", PortRange{9000, 9001}, false},
		{" 3000-3010 ", PortRange{3000, 3010}, false},
		{"8180-8080", PortRange{}, true},
		{"abc", PortRange{}, true},
		{"0", PortRange{}, true},
		{"8080-", PortRange{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePortRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPortRange_String(t *testing.T) {
	assert.Equal(t, "8080-8180", PortRange{}.String())
	assert.Equal(t, "9000-9001", SinglePort(9000).String())
}
