//go:build !windows

package signals

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestListenSIGUSR2(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan struct{}, 1)
	Listen(ctx, func() { got <- struct{}{} })

	if err := syscall.Kill(syscall.Getpid(), TriggerSignal); err != nil {
		t.Fatal(err)
	}
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("SIGUSR2 not delivered")
	}
}
