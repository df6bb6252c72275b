package jirasoap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nhle/jirabridge/internal/tracker"
)

// defaultTimeout bounds a single SOAP round trip.
const defaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an unexpected response body is kept in
// a StatusError.
const maxErrorBody = 512

// Client is a thin SOAP client for the Jira RPC service. Each call makes
// exactly one HTTP request; failures are returned to the caller as-is.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// A zero or negative value leaves the default in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for the SOAP endpoint address, e.g.
// https://jira.example.com/rpc/soap/jirasoapservice-v2.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialer returns a tracker.Dialer that builds a Client per endpoint.
func Dialer(opts ...Option) tracker.Dialer {
	return func(_ context.Context, endpoint string) (tracker.RemoteService, error) {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, fmt.Errorf("parsing endpoint: %w", err)
		}
		return NewClient(endpoint, opts...), nil
	}
}

// Endpoint returns the SOAP endpoint address.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// call performs one rpc/encoded SOAP request and decodes the response.
func (c *Client) call(
	ctx context.Context,
	operation string,
	params ...param,
) (*response, error) {
	payload := encodeEnvelope(operation, params...)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("SOAPAction", `""`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", operation, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("reading %s response: %w", operation, readErr)
	}

	// Axis reports faults with a 500 status, so try the envelope first.
	root, decodeErr := decodeTree(bytes.NewReader(respBody))
	if decodeErr == nil {
		parsed, err := parseResponse(root)
		if _, isFault := err.(*Fault); isFault {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if err != nil {
				return nil, fmt.Errorf("parsing %s response: %w", operation, err)
			}
			return parsed, nil
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Operation:  operation,
			Body:       truncate(string(respBody), maxErrorBody),
		}
	}

	return nil, fmt.Errorf("parsing %s response: %w", operation, decodeErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
