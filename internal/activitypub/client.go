package activitypub

import (
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/davecheney/linkpub/internal/httpsig"
)

// maxResponseBody bounds how much of a remote inbox's reply is retained.
const maxResponseBody = 64 << 10

// Client is an ActivityPub client which signs every request it makes with
// the local actor's key.
type Client struct {
	keyID      string
	privateKey *rsa.PrivateKey
	timeout    time.Duration
	transport  http.RoundTripper
}

// NewClient returns a new ActivityPub client. Each request is bounded by
// timeout, which covers connecting and reading the response.
func NewClient(keyID string, privateKey *rsa.PrivateKey, timeout time.Duration) *Client {
	return &Client{
		keyID:      keyID,
		privateKey: privateKey,
		timeout:    timeout,
		transport:  http.DefaultTransport,
	}
}

// httpClient returns an http.Client whose transport signs each request,
// including any redirects, over body.
func (c *Client) httpClient(body []byte) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if _, err := httpsig.Sign(req, c.keyID, c.privateKey, body); err != nil {
				return nil, fmt.Errorf("failed to sign request: %w", err)
			}
			return c.transport.RoundTrip(req)
		}),
	}
}

// Fetch fetches the ActivityPub resource at the given URL and decodes it into the given object.
func (c *Client) Fetch(ctx context.Context, uri string, obj any) error {
	return requests.URL(uri).
		Client(c.httpClient(nil)).
		Accept("application/activity+json").
		CheckContentType(
			"application/activity+json",
			"application/ld+json",
			"application/json",
		).
		CheckStatus(http.StatusOK).
		ToJSON(obj).
		Fetch(ctx)
}

// Response is the reply of a remote inbox.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the remote inbox accepted the activity.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Post delivers body to inbox. A non nil error means the request did not
// complete; a remote rejection is reported through the Response's status.
func (c *Client) Post(ctx context.Context, inbox string, body []byte) (*Response, error) {
	var resp Response
	err := requests.URL(inbox).
		Client(c.httpClient(body)).
		Method(http.MethodPost).
		BodyBytes(body).
		ContentType("application/activity+json").
		AddValidator(func(*http.Response) error {
			// every status is a valid answer, the caller inspects it.
			return nil
		}).
		Handle(func(res *http.Response) error {
			resp.StatusCode = res.StatusCode
			resp.Header = res.Header
			var err error
			resp.Body, err = io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
			return err
		}).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
