package utils

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ProbeAddress reports whether a TCP connection to host:port can be opened before timeout
// (or ctx) expires. The connection is closed immediately; nothing is sent.
func ProbeAddress(ctx context.Context, host string, port int, timeout time.Duration) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(probeCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("%s:%d unreachable: %w", host, port, err)
	}
	return conn.Close()
}
