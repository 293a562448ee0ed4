package adapters

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/wesleyorama2/hsm/internal/httpclient"
	"github.com/wesleyorama2/hsm/internal/timing"
)

// HTTPTrace measures the traced client from internal/httpclient.
type HTTPTrace struct {
	Options []httpclient.ClientOption
}

func (a *HTTPTrace) Name() string {
	return "github.com/wesleyorama2/hsm/internal/httpclient"
}

func (a *HTTPTrace) Test(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	client := a.client(target)

	sw.Start()
	resp, err := client.Do(ctx, httpclient.NewRequest("GET", target.URL))
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	sw.Finish()
	logPhases(resp.Timing, "raw")
	return nil
}

func (a *HTTPTrace) TestJSON(ctx context.Context, target timing.Target, sw *timing.Stopwatch) error {
	client := a.client(target)
	req := httpclient.NewRequest("GET", target.URL).WithHeader("Accept", "application/json")

	sw.Start()
	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	var v interface{}
	if err := resp.GetBodyAsJSON(&v); err != nil {
		return err
	}
	sw.Finish()
	logPhases(resp.Timing, "json")
	return nil
}

func (a *HTTPTrace) client(target timing.Target) *httpclient.Client {
	options := append([]httpclient.ClientOption{httpclient.WithUserAgent(target.UserAgent)}, a.Options...)
	return httpclient.NewClient(options...)
}

// logPhases writes the traced breakdown of a request at debug level
func logPhases(t httpclient.TimingInfo, mode string) {
	log.WithFields(log.Fields{
		"mode":     mode,
		"dns":      t.DNSLookupTime,
		"connect":  t.TCPConnectTime,
		"tls":      t.TLSHandshakeTime,
		"ttfb":     t.TimeToFirstByte,
		"transfer": t.ContentTransferTime,
		"total":    t.TotalTime,
	}).Debug("Request phases")
}
