package unzer

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/samvad-hq/unzer-simple/pkg/httpclient"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.unzer.com"
	// APIVersion is the version segment placed between host and path.
	APIVersion = "v1"

	contentTypeHeader = "Content-Type"
	contentTypeForm   = "application/x-www-form-urlencoded"
	contentTypeJSON   = "application/json"
)

// Requester is the request surface the resource wrappers depend on.
type Requester interface {
	Get(ctx context.Context, path string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, path string, payload any, headers map[string]string, useJSON bool) (*Response, error)
	Put(ctx context.Context, path string, payload any, headers map[string]string, useJSON bool) (*Response, error)
	Delete(ctx context.Context, path string, headers map[string]string) (*Response, error)
	// Endpoint returns the base URL plus version segment, without a trailing slash.
	Endpoint() string
}

// Client performs authenticated calls against the Unzer API. It holds no
// mutable state after construction and is safe for concurrent use.
type Client struct {
	privateKey string
	baseURL    string
	http       httpclient.Client
	log        Logger

	Baskets   *Baskets
	Customers *Customers
	Metadata  *Metadata
	Paypage   *Paypage
	Payments  *Payments
	Recurring *Recurring
	Webhooks  *Webhooks
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, e.g. for a sandbox or test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if u := strings.TrimRight(strings.TrimSpace(baseURL), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger enables verbose diagnostics: the outgoing URL, body and
// headers, and the raw response body are logged at debug level.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client authenticating with privateKey.
func New(privateKey string, opts ...Option) *Client {
	c := &Client{
		privateKey: privateKey,
		baseURL:    DefaultBaseURL,
		log:        noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}

	c.Baskets = NewBaskets(c)
	c.Customers = NewCustomers(c)
	c.Metadata = NewMetadata(c)
	c.Paypage = NewPaypage(c)
	c.Payments = NewPayments(c)
	c.Recurring = NewRecurring(c)
	c.Webhooks = NewWebhooks(c)
	return c
}

// Endpoint returns the base URL joined with the API version.
func (c *Client) Endpoint() string {
	return c.baseURL + "/" + APIVersion
}

// Get issues a GET to path.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.request(ctx, http.MethodGet, path, "", copyHeaders(headers))
}

// Delete issues a DELETE to path.
func (c *Client) Delete(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.request(ctx, http.MethodDelete, path, "", copyHeaders(headers))
}

// Post issues a POST to path. A string or []byte payload is sent unchanged;
// anything else is JSON-encoded when useJSON is set and form-encoded otherwise.
func (c *Client) Post(ctx context.Context, path string, payload any, headers map[string]string, useJSON bool) (*Response, error) {
	return c.send(ctx, http.MethodPost, path, payload, headers, useJSON)
}

// Put issues a PUT to path. Payload handling matches Post.
func (c *Client) Put(ctx context.Context, path string, payload any, headers map[string]string, useJSON bool) (*Response, error) {
	return c.send(ctx, http.MethodPut, path, payload, headers, useJSON)
}

func (c *Client) send(ctx context.Context, method, path string, payload any, headers map[string]string, useJSON bool) (*Response, error) {
	h := copyHeaders(headers)
	for k := range h {
		if strings.EqualFold(k, contentTypeHeader) {
			delete(h, k)
		}
	}
	h[contentTypeHeader] = contentTypeForm
	if useJSON {
		h[contentTypeHeader] = contentTypeJSON
	}

	body, err := encodeBody(payload, useJSON)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, method, path, body, h)
}

func encodeBody(payload any, useJSON bool) (string, error) {
	switch v := payload.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	if !useJSON {
		return FormEncode(payload)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", invalidArgument("json payload of type %T: %v", payload, err)
	}
	return string(b), nil
}

func (c *Client) request(ctx context.Context, method, path, body string, headers map[string]string) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	url := c.Endpoint() + path

	c.log.DebugObj("unzer request", "unzer_request", map[string]any{
		"method":  method,
		"url":     url,
		"body":    body,
		"headers": redactHeaders(headers),
	})

	resp, err := c.http.Do(ctx, &httpclient.Request{
		Method:   method,
		URL:      url,
		Headers:  headers,
		Body:     body,
		Username: c.privateKey,
	})
	if err != nil {
		c.log.ErrorObj("unzer request failed", "unzer_transport_error", map[string]any{
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	raw := resp.Body()
	c.log.DebugObj("unzer response", "unzer_response", map[string]any{
		"url":    url,
		"status": resp.StatusCode(),
		"body":   string(raw),
	})

	out := &Response{StatusCode: resp.StatusCode(), Body: raw}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ParseError{StatusCode: out.StatusCode, Body: raw, Err: errEmptyBody}
	}
	if err := json.Unmarshal(raw, &out.Data); err != nil {
		return nil, &ParseError{StatusCode: out.StatusCode, Body: raw, Err: err}
	}
	return out, nil
}

func redactHeaders(headers map[string]string) map[string]string {
	out := copyHeaders(headers)
	for k := range out {
		if strings.EqualFold(k, "Authorization") {
			out[k] = "[redacted]"
		}
	}
	return out
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	return out
}
