//go:build !windows

package codeeval

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLauncher_StartAndClose(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"result": "ok", "reply": "pong"})
	}))
	t.Cleanup(srv.Close)

	l := NewLauncher([]string{"sh", "-c", "sleep 30 & wait"}, nil)
	if err := l.Start(context.Background(), New(srv.URL, WithPing(3, time.Millisecond))); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan string, 1)
	go func() { done <- l.Close() }()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close() did not return after killing the process group")
	}

	if got := l.Close(); got != "" {
		t.Errorf("second Close() = %q, want empty", got)
	}
}

func TestLauncher_NotReady(t *testing.T) {
	t.Parallel()

	l := NewLauncher([]string{"sleep", "30"}, nil)
	// Nothing listens on this address.
	c := New("http://127.0.0.1:1", WithPing(2, time.Millisecond))

	err := l.Start(context.Background(), c)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Start() error = %v, want ErrNotReady", err)
	}
}

func TestLauncher_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		argv []string
	}{
		{"empty command", nil},
		{"missing program", []string{"/nonexistent/xmd-evaluator"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewLauncher(tt.argv, nil).Start(context.Background(), New(""))
			if !errors.Is(err, ErrLaunch) {
				t.Errorf("Start() error = %v, want ErrLaunch", err)
			}
		})
	}
}
