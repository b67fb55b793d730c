package client

import (
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderClient    = "X-Client"
)

// RequestMiddleware decorates an outgoing request before it is sent.
// Returning an error aborts the request before any I/O happens.
type RequestMiddleware func(r *resty.Request, req *Request) error

// decorators returns the request stage in its fixed order: default
// headers, then the credential, then the request id, then anything the
// caller registered.
func (c *Client) decorators() []RequestMiddleware {
	chain := []RequestMiddleware{
		c.defaultHeaders,
		c.authorization,
		requestID,
	}
	return append(chain, c.middleware...)
}

func (c *Client) defaultHeaders(r *resty.Request, req *Request) error {
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Accept", "application/json")

	if len(c.clientID) > 0 {
		r.SetHeader(HeaderClient, c.clientID)
	}

	// Configured headers may override the JSON defaults, per request
	// headers override both.
	r.SetHeaders(c.config.Headers)
	r.SetHeaders(req.Headers)
	return nil
}

// authorization attaches the current token. Without a token the header
// is left out entirely rather than sent empty.
func (c *Client) authorization(r *resty.Request, req *Request) error {
	token := c.Token()
	if len(token) == 0 {
		r.Header.Del("Authorization")
		return nil
	}
	r.SetAuthToken(token)
	req.credentialed = true
	return nil
}

func requestID(r *resty.Request, req *Request) error {
	if len(r.Header.Get(HeaderRequestID)) > 0 {
		return nil
	}
	r.SetHeader(HeaderRequestID, uuid.NewString())
	return nil
}
