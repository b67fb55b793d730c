package client

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request is one call to the reader service. A Request is single use:
// the client marks it attempted when it enters the pipeline.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any

	// Result, when set, receives the decoded JSON body of a successful
	// response.
	Result any

	attempted bool
	// credentialed is set when the Authorization header was attached
	credentialed bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v. An empty body leaves v
// untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}
