package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	hclog "github.com/hashicorp/go-hclog"

	apperrors "courseplay/internal/platform/errors"
	"courseplay/internal/platform/id"
)

const (
	HeaderViewer    = "X-Viewer-ID"
	HeaderRequestID = "X-Request-ID"
)

type Options struct {
	BaseURL  string
	Token    string
	ViewerID string
	Timeout  time.Duration
	IDs      id.Generator
	Logger   hclog.Logger
}

// Client is the shared transport to the course platform API.
type Client struct {
	http   *resty.Client
	logger hclog.Logger
}

// ErrorBody is the JSON error envelope returned by the platform.
type ErrorBody struct {
	Error string `json:"error"`
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ids := opts.IDs
	if ids == nil {
		ids = id.UUID{}
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetError(&ErrorBody{})
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.Token != "" {
		rc.SetAuthToken(opts.Token)
	}
	if opts.ViewerID != "" {
		rc.SetHeader(HeaderViewer, opts.ViewerID)
	}
	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(HeaderRequestID) == "" {
			req.SetHeader(HeaderRequestID, ids.New())
		}
		return nil
	})

	return &Client{http: rc, logger: logger.Named("api")}
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, out any) error {
	return c.GetAs(ctx, "", path, params, out)
}

// GetAs is Get on behalf of viewerID. An empty viewer keeps the default header.
func (c *Client) GetAs(ctx context.Context, viewerID, path string, params map[string]string, out any) error {
	req := c.http.R().SetContext(ctx).SetPathParams(params).SetResult(out)
	if viewerID != "" {
		req.SetHeader(HeaderViewer, viewerID)
	}
	resp, err := req.Get(path)
	return c.check(http.MethodGet, path, resp, err)
}

// Put sends body as JSON. A nil out discards the response body.
func (c *Client) Put(ctx context.Context, path string, params map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetPathParams(params).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Put(path)
	return c.check(http.MethodPut, path, resp, err)
}

func (c *Client) Post(ctx context.Context, path string, params map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetPathParams(params)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Post(path)
	return c.check(http.MethodPost, path, resp, err)
}

func (c *Client) check(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrUnavailable, method, path, err)
	}
	c.logger.Trace("request done", "method", method, "path", path, "status", resp.StatusCode(), "duration", resp.Time())
	if !resp.IsError() {
		return nil
	}
	return StatusError(resp.StatusCode(), serverMessage(resp))
}

// StatusError maps an HTTP failure status to the matching sentinel.
func StatusError(status int, message string) error {
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = apperrors.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = apperrors.ErrUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = apperrors.ErrInvalidInput
	default:
		kind = apperrors.ErrUnavailable
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("%w: status %d: %s", kind, status, message)
}

func serverMessage(resp *resty.Response) string {
	if body, ok := resp.Error().(*ErrorBody); ok && body != nil && body.Error != "" {
		return body.Error
	}
	return ""
}
