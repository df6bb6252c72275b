package tracker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Factory creates authenticated sessions. It holds no per-session state,
// so one Factory may create sessions for different endpoints concurrently.
type Factory struct {
	dial      Dialer
	formatter Formatter
	observer  Observer
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithFormatter sets the formatter applied to every comment body.
func WithFormatter(f Formatter) FactoryOption {
	return func(fa *Factory) {
		if f != nil {
			fa.formatter = f
		}
	}
}

// WithObserver sets the observer notified by created sessions.
func WithObserver(o Observer) FactoryOption {
	return func(fa *Factory) {
		if o != nil {
			fa.observer = o
		}
	}
}

// NewFactory creates a Factory that resolves endpoints with dial.
func NewFactory(dial Dialer, opts ...FactoryOption) *Factory {
	f := &Factory{
		dial:      dial,
		formatter: PlainFormatter,
		observer:  NopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EndpointURL derives the SOAP endpoint address from a base URL.
func EndpointURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + ServicePath
}

// CreateSession resolves the endpoint for req's base URL, logs in, and
// returns a Handler bound to the new session. Any failure is returned as
// a *ConnectionError; no partial session is ever returned.
func (f *Factory) CreateSession(
	ctx context.Context,
	req *IssueRequest,
	username string,
	password string,
) (*Handler, error) {
	endpoint := EndpointURL(req.Config.BaseURL)
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}

	f.observer.SessionStarted(endpoint, username)

	svc, err := f.dial(ctx, endpoint)
	if err != nil {
		return nil, &ConnectionError{URL: endpoint, Err: err}
	}

	token, err := svc.Login(ctx, username, password)
	if err != nil {
		return nil, &ConnectionError{URL: endpoint, Err: err}
	}

	return &Handler{
		service:   svc,
		token:     token,
		request:   req,
		username:  username,
		formatter: f.formatter,
		observer:  f.observer,
	}, nil
}

// validateEndpoint rejects addresses that cannot be dialed.
func validateEndpoint(endpoint string) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return newMalformedURLError(endpoint, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return newMalformedURLError(
			endpoint,
			fmt.Errorf("URL must include scheme and host"),
		)
	}
	return nil
}
