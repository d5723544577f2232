package app

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/foundermafstat/interactive-board/internal/config"
)

func testConfig(t *testing.T, port int) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = port
	return cfg
}

func TestStartFailsOnOccupiedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	application, err := NewApplication(testConfig(t, port))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}

	if err := application.Start(context.Background()); err == nil {
		t.Error("expected a bind failure on an occupied port")
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		application.Stop(stopCtx)
	}
}

func TestGracefulStopIsNotAServerError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("picking port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	application, err := NewApplication(testConfig(t, port))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := application.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// Shutdown ends ListenAndServe with ErrServerClosed, which is not a
	// failure and must not surface to the lifetime watcher.
	select {
	case err := <-application.ServerError():
		t.Errorf("graceful stop reported a server error: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewApplicationRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.HTTP.Port = -1

	if _, err := NewApplication(cfg); err == nil {
		t.Error("expected a configuration error")
	}
}
