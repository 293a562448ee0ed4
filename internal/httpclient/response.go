package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TimingInfo stores the time spent in each phase of a request.
type TimingInfo struct {
	StartTime           time.Time
	DNSLookupTime       time.Duration
	TCPConnectTime      time.Duration
	TLSHandshakeTime    time.Duration
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
}

// Response represents an HTTP response with its body already read.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Timing     TimingInfo
}

// GetBodyAsJSON unmarshals the response body into v
func (r *Response) GetBodyAsJSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns an error for non-2xx responses
func (r *Response) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return fmt.Errorf("unexpected status %s", r.Status)
}
