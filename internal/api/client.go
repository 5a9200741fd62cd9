package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Error is the uniform shape of every failed platform call: the HTTP status
// plus whatever the server put in the body. Detail carries the server's
// human-readable message verbatim when present.
type Error struct {
	Status int
	Detail string
	Fields map[string]interface{}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("platform: %d %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("platform: status %d", e.Status)
}

// Client is the single request primitive to the platform backend. It owns the
// unauthorized hook: any call that comes back 401 notifies subscribers exactly
// once before the error is returned, so the session layer can tear down
// without the client holding a reference to it.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	token        func() string
	unauthorized []func()
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetTokenSource installs the function consulted for the bearer token on
// every request. An empty return means no auth header is attached.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	c.token = fn
	c.mu.Unlock()
}

// OnUnauthorized subscribes fn for the lifetime of the client. Subscribers
// run synchronously, once per 401 response, before the caller sees the error.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.unauthorized = append(c.unauthorized, fn)
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	fn := c.token
	c.mu.Unlock()
	if fn == nil {
		return ""
	}
	return fn()
}

func (c *Client) notifyUnauthorized() {
	c.mu.Lock()
	subs := make([]func(), len(c.unauthorized))
	copy(subs, c.unauthorized)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// request performs a JSON call. body may be nil; out may be nil when the
// caller does not need the response payload.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// File is one part of a multipart upload.
type File struct {
	Name    string
	Content []byte
}

// requestMultipart performs a multipart/form-data call. Auth and error
// semantics are identical to request; only the encoding differs.
func (c *Client) requestMultipart(ctx context.Context, method, path string, fields map[string]string, files map[string]File, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("encode form field %s: %w", key, err)
		}
	}
	for key, file := range files {
		part, err := w.CreateFormFile(key, file.Name)
		if err != nil {
			return fmt.Errorf("encode form file %s: %w", key, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("encode form file %s: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Fields: parseLoose(raw)}
		if detail, ok := apiErr.Fields["detail"].(string); ok {
			apiErr.Detail = detail
		}
		if resp.StatusCode == http.StatusUnauthorized {
			log.Debug().Str("path", req.URL.Path).Msg("401 received, notifying unauthorized subscribers")
			c.notifyUnauthorized()
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseLoose never fails: empty bodies become an empty map and non-JSON
// bodies become {detail: rawText}, matching how the backend's error envelope
// is consumed everywhere else.
func parseLoose(raw []byte) map[string]interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]interface{}{}
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(trimmed, &fields); err != nil || fields == nil {
		return map[string]interface{}{"detail": string(trimmed)}
	}
	return fields
}
