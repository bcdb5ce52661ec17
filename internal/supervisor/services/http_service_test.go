// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeServer blocks in ListenAndServe until Shutdown is called.
type fakeServer struct {
	startErr error
	done     chan struct{}
	shutdown chan struct{}
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{
		startErr: startErr,
		done:     make(chan struct{}),
		shutdown: make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.shutdown
	close(f.done)
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	close(f.shutdown)
	return nil
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}

	select {
	case <-srv.done:
	default:
		t.Error("server goroutine still running after shutdown")
	}
}

func TestHTTPServerService_StartupFailure(t *testing.T) {
	boom := errors.New("listen tcp: address already in use")
	svc := NewHTTPServerService(newFakeServer(boom), time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Serve() = %v, want wrapped %v", err, boom)
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(newFakeServer(nil), 0)
	if svc.String() != "http-server" {
		t.Errorf("String() = %q, want http-server", svc.String())
	}
}
