package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Request represents an HTTP request
type Request struct {
	Method      string
	URL         string
	QueryParams url.Values
	Headers     map[string]string
}

// NewRequest creates a new HTTP request
func NewRequest(method, rawURL string) *Request {
	return &Request{
		Method:      method,
		URL:         rawURL,
		QueryParams: make(url.Values),
		Headers:     make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithQueryParam adds a query parameter to the request
func (r *Request) WithQueryParam(key, value string) *Request {
	r.QueryParams.Add(key, value)
	return r
}

// Build constructs an http.Request from the Request
func (r *Request) Build(ctx context.Context) (*http.Request, error) {
	reqURL, err := url.Parse(r.URL)
	if err != nil {
		return nil, err
	}

	if len(r.QueryParams) > 0 {
		query := reqURL.Query()
		for key, values := range r.QueryParams {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		reqURL.RawQuery = query.Encode()
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}
