package xmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alnah/go-xmd/internal/image"
)

func TestRemoteClient_Ping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name: "pong",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(PingResponse{Reply: "pong"})
			},
		},
		{
			name: "wrong reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(PingResponse{Reply: "ping"})
			},
			wantErr: true,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down", http.StatusServiceUnavailable)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			err := NewRemoteClient(srv.URL + "/").Ping(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrRemote) {
					t.Errorf("Ping() error = %v, want ErrRemote", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestRemoteClient_Compile(t *testing.T) {
	t.Parallel()

	var got CompileRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/" {
			t.Errorf("request = %s %s, want POST /", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		out := NewImage("main_tex_doc")
		_ = out.AddString(`\documentclass{article}`, "/main.tex")
		_ = json.NewEncoder(w).Encode(CompileResponse{OutputImage: image.ToPayload(out)})
	}))
	t.Cleanup(srv.Close)

	in := NewImage("input")
	if err := in.AddString("PNG", "/a.png"); err != nil {
		t.Fatalf("AddString() error = %v", err)
	}
	out, err := NewRemoteClient(srv.URL).Compile(context.Background(), Input{Source: []byte("# T\n"), Name: "/doc.xmd", Files: in, Template: TeXDoc})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if got.Source != "# T\n" || got.Name != "/doc.xmd" || got.Template != "tex_doc" {
		t.Errorf("request = %+v", got)
	}
	if got.InputPackage == nil || len(got.InputPackage.Files) != 1 || got.InputPackage.Files[0].VPath != "/a.png" {
		t.Errorf("request input package = %+v", got.InputPackage)
	}
	if data, _ := out.Get("/main.tex"); string(data) != `\documentclass{article}` {
		t.Errorf("output /main.tex = %q", data)
	}
}

func TestRemoteClient_CompileErrors(t *testing.T) {
	t.Parallel()

	t.Run("partial output with error header", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			partial := NewImage("partial")
			_ = partial.AddString("x", "/__debug/ast.json")
			w.Header().Set(ErrorHeader, "directive failed: unknown directive")
			_ = json.NewEncoder(w).Encode(CompileResponse{OutputImage: image.ToPayload(partial)})
		}))
		t.Cleanup(srv.Close)

		out, err := NewRemoteClient(srv.URL).Compile(context.Background(), Input{Source: []byte("x"), Template: HTMLTufte})
		if !errors.Is(err, ErrRemote) || !strings.Contains(err.Error(), "unknown directive") {
			t.Errorf("Compile() error = %v, want ErrRemote with the header text", err)
		}
		if out == nil || !out.Has("/__debug/ast.json") {
			t.Error("Compile() dropped the partial output")
		}
	})

	t.Run("bad request", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "unknown template"})
		}))
		t.Cleanup(srv.Close)

		out, err := NewRemoteClient(srv.URL).Compile(context.Background(), Input{Source: []byte("x"), Template: "odt"})
		if !errors.Is(err, ErrRemote) || !strings.Contains(err.Error(), "status 400: unknown template") {
			t.Errorf("Compile() error = %v", err)
		}
		if out != nil {
			t.Error("Compile() returned output for a rejected request")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		if _, err := NewRemoteClient(url).Compile(context.Background(), Input{Source: []byte("x"), Template: TeXDoc}); !errors.Is(err, ErrRemote) {
			t.Errorf("Compile() error = %v, want ErrRemote", err)
		}
	})
}
