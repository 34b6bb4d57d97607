package xmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alnah/go-xmd/internal/image"
)

// ErrorHeader carries the generation error of a remote compilation whose
// partial output is still returned.
const ErrorHeader = "X-XMD-ERROR-DESC"

// CompileRequest is the body of a remote compilation.
type CompileRequest struct {
	Source string `json:"source"`
	// Name is the virtual path of the root document inside the input
	// package. The server uses DefaultSourceName when empty.
	Name         string         `json:"name,omitempty"`
	InputPackage *image.Payload `json:"inputPackage,omitempty"`
	Template     string         `json:"template"`
}

// CompileResponse is the body answering a remote compilation.
type CompileResponse struct {
	OutputImage image.Payload `json:"outputImage"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PingResponse is the body answering GET /ping.
type PingResponse struct {
	Reply string `json:"reply"`
}

// errorSnippetBytes bounds how much of an unexpected body ends up in errors.
const errorSnippetBytes = 1024

// RemoteClient compiles documents on an xmd server.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteClient creates a client for the server at baseURL.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Ping checks the server answers.
func (c *RemoteClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRemote, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrRemote, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping: status %d: %s", ErrRemote, resp.StatusCode, snippet(resp.Body))
	}
	var pong PingResponse
	if err := json.NewDecoder(resp.Body).Decode(&pong); err != nil || pong.Reply != "pong" {
		return fmt.Errorf("%w: ping: unexpected reply %q", ErrRemote, pong.Reply)
	}
	return nil
}

// Compile sends in to the server and returns the output image. When the
// server reports a generation error the partial output is returned together
// with the error.
func (c *RemoteClient) Compile(ctx context.Context, in Input) (*Image, error) {
	body := CompileRequest{Source: string(in.Source), Name: in.Name, Template: string(in.Template)}
	if in.Files != nil {
		p := image.ToPayload(in.Files)
		body.InputPackage = &p
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrRemote, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		desc := resp.Header.Get(ErrorHeader)
		if desc == "" && json.NewDecoder(io.LimitReader(resp.Body, errorSnippetBytes)).Decode(&e) == nil {
			desc = e.Error
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, desc)
	}

	var out CompileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRemote, err)
	}
	img, err := image.FromPayload(out.OutputImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	if desc := resp.Header.Get(ErrorHeader); desc != "" {
		return img, fmt.Errorf("%w: %s", ErrRemote, desc)
	}
	return img, nil
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, errorSnippetBytes))
	return string(b)
}
