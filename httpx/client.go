// Package httpx is the HTTP collaborator for the resource clients: a thin
// resty wrapper that builds escaped paths, signs requests, and decodes the
// backend error envelope into apierr.BackendError values.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/adeilh/go-cirrus/apierr"
)

// HeaderTransition carries the identifier mutations return for follow-up
// polling of asynchronous backend operations.
const HeaderTransition = "X-Transition-Uri"

// RequestSigner produces an Authorization header value. The backends sign
// over the Date header only, so the signature is independent of method and
// path.
type RequestSigner interface {
	Sign(date string) (string, error)
}

// RestClient exposes a minimal subset of resty.Client for customization without importing resty.
type RestClient interface {
	SetHeader(key, value string) RestClient
	SetHeaders(headers map[string]string) RestClient
	SetTimeout(d time.Duration) RestClient
}

type restyAdapter struct{ c *resty.Client }

func (r restyAdapter) SetHeader(key, value string) RestClient {
	r.c.SetHeader(key, value)
	return r
}

func (r restyAdapter) SetHeaders(headers map[string]string) RestClient {
	r.c.SetHeaders(headers)
	return r
}

func (r restyAdapter) SetTimeout(d time.Duration) RestClient {
	r.c.SetTimeout(d)
	return r
}

type Client struct {
	resty *resty.Client
}

func NewClient(opts ...ClientOption) *Client {
	cfg := defaultClientOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	rc := resty.New()
	if cfg.BaseURL != "" {
		rc.SetBaseURL(cfg.BaseURL)
	}
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}
	if cfg.Signer != nil {
		signer, now := cfg.Signer, cfg.Now
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			date := now().UTC().Format(http.TimeFormat)
			authz, err := signer.Sign(date)
			if err != nil {
				return err
			}
			req.SetHeader("Date", date)
			req.SetHeader("Authorization", authz)
			return nil
		})
	}
	if cfg.RestyConfig != nil {
		cfg.RestyConfig(restyAdapter{rc})
	}

	return &Client{resty: rc}
}

type RequestOption func(*resty.Request)

// WithRequestHeaders sets headers on the underlying Resty request.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(headers) == 0 {
			return
		}
		r.SetHeaders(headers)
	}
}

// WithQuery sets query parameters on the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(params) == 0 {
			return
		}
		r.SetQueryParams(params)
	}
}

func (c *Client) Get(ctx context.Context, path string, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, resty.MethodGet, path, nil, result, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, resty.MethodPost, path, body, result, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, resty.MethodPut, path, body, result, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, resty.MethodDelete, path, nil, result, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	req := c.resty.R().SetContext(ctx)
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return resp, err
	}
	if resp.IsError() {
		return resp, decodeBackendError(resp)
	}
	return resp, nil
}

// decodeBackendError parses the error envelope; a body that isn't the
// envelope is carried verbatim as the message so nothing is lost.
func decodeBackendError(resp *resty.Response) *apierr.BackendError {
	be := &apierr.BackendError{}
	if err := json.Unmarshal(resp.Body(), be); err != nil {
		be = &apierr.BackendError{Message: strings.TrimSpace(resp.String())}
	}
	be.StatusCode = resp.StatusCode()
	return be
}

// TransitionID returns the transition identifier from a mutation response,
// or "" when the backend finished synchronously.
func TransitionID(resp *resty.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header().Get(HeaderTransition)
}
