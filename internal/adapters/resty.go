package adapters

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/wesleyorama2/hsm/internal/timing"
)

// Resty measures github.com/go-resty/resty.
type Resty struct{}

func (a *Resty) Name() string {
	return "github.com/go-resty/resty/v2"
}

func (a *Resty) Test(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	req := resty.New().R().
		SetContext(ctx).
		SetHeader("User-Agent", target.UserAgent)

	sw.Start()
	resp, err := req.Get(target.URL)
	if err != nil {
		return err
	}
	if err := checkStatus(resp.StatusCode(), resp.Status()); err != nil {
		return err
	}
	sw.Finish()
	return nil
}

func (a *Resty) TestJSON(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	var v interface{}
	req := resty.New().R().
		SetContext(ctx).
		SetHeader("User-Agent", target.UserAgent).
		SetHeader("Accept", "application/json").
		ForceContentType("application/json").
		SetResult(&v)

	sw.Start()
	resp, err := req.Get(target.URL)
	if err != nil {
		return err
	}
	if err := checkStatus(resp.StatusCode(), resp.Status()); err != nil {
		return err
	}
	sw.Finish()
	return nil
}
