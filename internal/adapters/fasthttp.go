package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/wesleyorama2/hsm/internal/timing"
)

// FastHTTP measures github.com/valyala/fasthttp. fasthttp has no context
// support, so only the context deadline is honoured.
type FastHTTP struct {
	Client *fasthttp.Client
}

func (a *FastHTTP) Name() string {
	return "github.com/valyala/fasthttp"
}

func (a *FastHTTP) Test(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	return a.get(ctx, target, sw, "", func([]byte) error { return nil })
}

func (a *FastHTTP) TestJSON(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	return a.get(ctx, target, sw, "application/json", func(body []byte) error {
		var v interface{}
		return json.Unmarshal(body, &v)
	})
}

func (a *FastHTTP) get(ctx context.Context, target timing.Target, sw *timing.Stopwatch, accept string, read func([]byte) error) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target.URL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(target.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	client := a.Client
	if client == nil {
		client = &fasthttp.Client{}
	}

	sw.Start()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		err = client.Do(req, resp)
	}
	if err != nil {
		return err
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("unexpected status %d", code)
	}
	if err := read(resp.Body()); err != nil {
		return err
	}
	sw.Finish()
	return nil
}
