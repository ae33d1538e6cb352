package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"xdao.co/fchub/hub"
	"xdao.co/fchub/message"
)

func TestRun_BadFlags(t *testing.T) {
	var errOut bytes.Buffer
	if code := run(context.Background(), []string{"--network", "moon"}, &errOut); code != 2 {
		t.Fatalf("bad network: exit %d, want 2", code)
	}
	if code := run(context.Background(), []string{"--nope"}, &errOut); code != 2 {
		t.Fatalf("unknown flag: exit %d, want 2", code)
	}
}

func TestRun_ServesAndStops(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := lis.Addr().String()
	_ = lis.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	var errOut bytes.Buffer
	go func() {
		done <- run(ctx, []string{"--listen", addr, "--env", "production"}, &errOut)
	}()

	c, err := hub.Dial(addr, hub.DialOptions{Insecure: true, ReadyTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	m, err := c.GetUserData(context.Background(), 1, message.UserDataTypeUsername)
	if err != nil || m != nil {
		t.Fatalf("GetUserData on empty hub = %v, %v", m, err)
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit %d, stderr %s", code, errOut.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("fchubd did not stop")
	}
	if !strings.Contains(errOut.String(), "fchubd listening") {
		t.Fatalf("missing startup log: %q", errOut.String())
	}
}

func TestServe_ReturnsWhenServeFails(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	_ = lis.Close()

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), hub.NewServer(), lis, nil, zerolog.Nop())
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected Serve error on a closed listener")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after Serve failed")
	}
}
