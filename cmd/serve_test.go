package cmd

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

// drainingServer mimics http.Server: Start returns as soon as Shutdown begins,
// while Shutdown itself blocks until in-flight requests are released.
type drainingServer struct {
	shutdownStarted chan struct{}
	release         chan struct{}
	startErr        error
}

func newDrainingServer() *drainingServer {
	return &drainingServer{
		shutdownStarted: make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (s *drainingServer) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	<-s.shutdownStarted
	return nil
}

func (s *drainingServer) Shutdown(ctx context.Context) error {
	close(s.shutdownStarted)
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestServeUntilSignal_WaitsForDrain(t *testing.T) {
	server := newDrainingServer()
	sigChan := make(chan os.Signal, 1)

	returned := make(chan error, 1)
	go func() {
		returned <- serveUntilSignal(context.Background(), server, sigChan, time.Minute)
	}()

	sigChan <- syscall.SIGTERM
	<-server.shutdownStarted

	select {
	case err := <-returned:
		t.Fatalf("returned before in-flight requests drained: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(server.release)

	select {
	case err := <-returned:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("did not return after shutdown completed")
	}
}

func TestServeUntilSignal_StartError(t *testing.T) {
	server := newDrainingServer()
	server.startErr = errors.New("address already in use")

	err := serveUntilSignal(context.Background(), server, make(chan os.Signal), time.Minute)
	if err == nil || !errors.Is(err, server.startErr) {
		t.Errorf("expected wrapped start error, got %v", err)
	}
}
