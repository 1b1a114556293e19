package tilesource

import (
	"context"
	"io"
	"net/http"
	"time"

	"lintang/racemap/pkg/config"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout    = 2000 * time.Millisecond
	backoffInterval   = 100 * time.Millisecond
	maximumJitter     = 50 * time.Millisecond
	maxTileBodyLength = 8 << 20
)

// HTTPSource fetches tiles from a z/x/y URL template, retrying on transport errors and 5xx.
type HTTPSource struct {
	template string
	client   heimdall.Client
}

type HTTPOption func(*httpOptions)

type httpOptions struct {
	timeout time.Duration
	retries int
	doer    heimdall.Doer
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) { o.timeout = d }
}

func WithRetries(n int) HTTPOption {
	return func(o *httpOptions) { o.retries = n }
}

// WithDoer replaces the underlying *http.Client.
func WithDoer(d heimdall.Doer) HTTPOption {
	return func(o *httpOptions) { o.doer = d }
}

func NewHTTPSource(template string, opts ...HTTPOption) *HTTPSource {
	o := httpOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []httpclient.Option{
		httpclient.WithHTTPTimeout(o.timeout),
		httpclient.WithRetryCount(o.retries),
		httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(backoffInterval, maximumJitter))),
	}
	if o.doer != nil {
		clientOpts = append(clientOpts, httpclient.WithHTTPClient(o.doer))
	}
	return &HTTPSource{
		template: template,
		client:   httpclient.NewClient(clientOpts...),
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, tile maptile.Tile) ([]byte, error) {
	url := config.TileURL(s.template, tile)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", url)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusNoContent:
		return nil, errors.Wrapf(ErrTileNotFound, "fetch %s", url)
	case res.StatusCode != http.StatusOK:
		return nil, errors.Errorf("fetch %s: unexpected status %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxTileBodyLength))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", url)
	}
	log.WithFields(log.Fields{"url": url, "bytes": len(body)}).Debug("tile fetched")
	return Gunzip(body)
}
