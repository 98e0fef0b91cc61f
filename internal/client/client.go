// Package client is the HTTP implementation of the trip persistence contract.
// The planner uses it to create, save and delete trips; tripctl also uses List
// to hydrate a planner at startup.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/persist"
)

// DefaultTimeout bounds a single request when the caller's context has no
// deadline.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read into the message.
const maxErrorBody = 4 << 10

// Client talks to the Tripboard API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a Client for the API rooted at baseURL,
// e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is a non-2xx response. It wraps domain.ErrNotFound,
// domain.ErrValidation or persist.ErrTransient depending on the status, so
// callers match it with errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status == http.StatusUnprocessableEntity, e.Status == http.StatusBadRequest:
		return domain.ErrValidation
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return persist.ErrTransient
	}
	return nil
}

type createResponse struct {
	ID string `json:"id"`
}

type listResponse struct {
	Data []domain.Trip `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Create stores a new trip and returns the server-assigned id.
func (c *Client) Create(ctx context.Context, req domain.CreateRequest) (string, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/trips/create", req, &out); err != nil {
		return "", fmt.Errorf("client.Client.Create: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("client.Client.Create: response carried no id")
	}
	return out.ID, nil
}

// Save applies a partial update to the trip with the given id.
func (c *Client) Save(ctx context.Context, id string, patch domain.Patch) error {
	if err := c.do(ctx, http.MethodPatch, savePath(id), patch, nil); err != nil {
		return fmt.Errorf("client.Client.Save: %w", err)
	}
	return nil
}

// Delete removes the trip with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, savePath(id), nil, nil); err != nil {
		return fmt.Errorf("client.Client.Delete: %w", err)
	}
	return nil
}

// List returns every stored trip, marked as synced.
func (c *Client) List(ctx context.Context) ([]domain.Trip, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/trips", nil, &out); err != nil {
		return nil, fmt.Errorf("client.Client.List: %w", err)
	}
	for i := range out.Data {
		out.Data[i].SyncState = domain.SyncSynced
	}
	return out.Data, nil
}

func savePath(id string) string {
	return "/trips/" + url.PathEscape(id) + "/save"
}

// do sends one request. Transport failures wrap persist.ErrTransient so the
// scheduler retries them; a canceled context does not.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", persist.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error.Code != "" {
		apiErr.Code = er.Error.Code
		apiErr.Message = er.Error.Message
	}
	return apiErr
}
