package main

import (
	"net"
	"testing"
)

func TestListenWithRetry_FreePort(t *testing.T) {
	// Grab an ephemeral port, release it, then ask for it back.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	port := probe.Addr().(*net.TCPAddr).Port
	probe.Close()

	ln, got, err := listenWithRetry("127.0.0.1", port, 1)
	if err != nil {
		t.Fatalf("listenWithRetry: %v", err)
	}
	defer ln.Close()
	if got != port {
		t.Errorf("bound port = %d, want %d", got, port)
	}
}

func TestListenWithRetry_ProbesUpward(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	defer probe.Close()
	taken := probe.Addr().(*net.TCPAddr).Port

	// The taken port is occupied, so the retry loop should land on a successor.
	ln, got, err := listenWithRetry("127.0.0.1", taken, 10)
	if err != nil {
		t.Fatalf("listenWithRetry: %v", err)
	}
	defer ln.Close()
	if got == taken {
		t.Errorf("bound the occupied port %d", taken)
	}
	if got <= taken || got >= taken+10 {
		t.Errorf("bound port %d outside probe range (%d, %d)", got, taken, taken+10)
	}
}

func TestListenWithRetry_Exhausted(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	defer probe.Close()
	taken := probe.Addr().(*net.TCPAddr).Port

	if _, _, err := listenWithRetry("127.0.0.1", taken, 1); err == nil {
		t.Error("expected error when the only candidate port is taken")
	}
}
