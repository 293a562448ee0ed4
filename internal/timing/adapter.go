package timing

import (
	"context"
	"fmt"
)

// Target is what an adapter needs to issue its requests.
type Target struct {
	URL string
	// UserAgent must be sent as the User-Agent header so the target can
	// attribute the request.
	UserAgent string
}

// Adapter exercises one HTTP client library against a target.
//
// Test fetches the target as raw text and TestJSON fetches and decodes it as
// JSON. Each must call sw.Start exactly once right before the request and
// sw.Finish exactly once when it completes; returning an error rejects the
// measurement.
type Adapter interface {
	Name() string
	Test(ctx context.Context, target Target, sw *Stopwatch) error
	TestJSON(ctx context.Context, target Target, sw *Stopwatch) error
}

// UnimplementedAdapter can be embedded to get default behaviour for every
// Adapter method.
type UnimplementedAdapter struct{}

func (UnimplementedAdapter) Name() string {
	return "unknown test"
}

func (UnimplementedAdapter) Test(context.Context, Target, *Stopwatch) error {
	return fmt.Errorf("test: %w", ErrNotImplemented)
}

func (UnimplementedAdapter) TestJSON(context.Context, Target, *Stopwatch) error {
	return fmt.Errorf("testJSON: %w", ErrNotImplemented)
}

// UserAgent returns the user agent an adapter identifies itself with.
func UserAgent(a Adapter) string {
	return ContractName + ": " + a.Name()
}
