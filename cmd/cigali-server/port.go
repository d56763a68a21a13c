package main

import (
	"fmt"
	"net"
)

// listenWithRetry binds to the first free port starting at the configured
// one, probing upward through at most attempts successors. Returns the
// listener and the port actually bound.
func listenWithRetry(host string, port, attempts int) (net.Listener, int, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		candidate := port + i
		if candidate > 65535 {
			break
		}
		ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, candidate))
		if err == nil {
			return ln, candidate, nil
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in range %d-%d: %w", port, port+attempts-1, lastErr)
}
