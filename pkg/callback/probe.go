package callback

import (
	"net"
	"strconv"
	"time"
)

// loopbackHosts are the loopback-equivalent hosts probed with outbound
// connects. A port owner may answer on only a subset of interfaces.
var loopbackHosts = []string{"127.0.0.1", "localhost", "::1"}

const connectProbeTimeout = 100 * time.Millisecond

// PortAvailable reports whether the port looks free, combining two checks
// conservatively: no loopback host accepts a connect, and a bind succeeds.
// The result is advisory; a race with another process is possible and the
// bind error in Start is the authoritative failure signal.
func PortAvailable(port int) bool {
	for _, host := range loopbackHosts {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), connectProbeTimeout)
		if err == nil {
			_ = conn.Close()
			return false
		}
	}
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}
