package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wesleyorama2/hsm/internal/timing"
)

// NetHTTP measures the standard library client.
type NetHTTP struct {
	Client *http.Client
}

func (a *NetHTTP) Name() string {
	return "net/http"
}

func (a *NetHTTP) Test(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	return a.get(ctx, target, sw, "", func(body io.Reader) error {
		_, err := io.ReadAll(body)
		return err
	})
}

func (a *NetHTTP) TestJSON(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	return a.get(ctx, target, sw, "application/json", func(body io.Reader) error {
		var v interface{}
		return json.NewDecoder(body).Decode(&v)
	})
}

func (a *NetHTTP) get(ctx context.Context, target timing.Target, sw *timing.Stopwatch, accept string, read func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", target.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	client := a.Client
	if client == nil {
		client = &http.Client{}
	}

	sw.Start()
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, resp.Status); err != nil {
		return err
	}
	if err := read(resp.Body); err != nil {
		return err
	}
	sw.Finish()
	return nil
}
