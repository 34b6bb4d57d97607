package xmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alnah/go-xmd/internal/codeeval"
)

// ---------------------------------------------------------------------------
// TestCompile_EvaluatorReadiness - Services from WithEvaluatorURL are polled
// ---------------------------------------------------------------------------

func TestCompile_EvaluatorReadiness(t *testing.T) {
	t.Parallel()

	var pings, sessions atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		pings.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("POST /newSession", func(w http.ResponseWriter, _ *http.Request) {
		sessions.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newCompiler(t, WithEvaluatorURL(srv.URL), WithPing(2, 0))
	_, err := c.Compile(context.Background(), Input{Source: []byte("x `!3+4`"), Template: HTMLTufte})

	if !errors.Is(err, ErrEvaluation) || !errors.Is(err, codeeval.ErrNotReady) {
		t.Errorf("Compile() error = %v, want ErrEvaluation wrapping ErrNotReady", err)
	}
	if got := pings.Load(); got != 2 {
		t.Errorf("ping calls = %d, want 2", got)
	}
	if got := sessions.Load(); got != 0 {
		t.Errorf("sessions created = %d, want 0", got)
	}
}

func TestCompile_NoCodeNeedsNoEvaluator(t *testing.T) {
	t.Parallel()

	var pings atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pings.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := newCompiler(t, WithEvaluatorURL(srv.URL), WithPing(2, 0))
	if _, err := c.Compile(context.Background(), Input{Source: []byte("plain `code`"), Template: TeXDoc}); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := pings.Load(); got != 0 {
		t.Errorf("ping calls = %d, want 0", got)
	}
}
