// Package upstream is the shared plumbing for outbound calls to the
// catalog, identity and skill-scoring APIs.
package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"paper-api/internal/domain"
)

var (
	callTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "paper", Name: "upstream_requests_total", Help: "Count of outbound API calls"},
		[]string{"upstream", "status"},
	)
	callLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paper",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of outbound API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"},
	)
)

func init() { prometheus.MustRegister(callTotal, callLatency) }

const (
	// 上游响应体上限 8MB，超出视为格式错误
	maxBody = 8 << 20
	// 最多跟随的重定向次数
	maxRedirects = 5
)

type Client struct {
	Name string
	HTTP *http.Client
}

func New(name string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{Name: name, HTTP: &http.Client{Timeout: timeout}}
	c.GuardRedirects(nil)
	return c
}

// GuardRedirects 每一跳重定向都交给 check 重新校验；check 为 nil 时只限制跳数。
// check 返回的 *domain.Error 会原样交还给调用方。
func (c *Client) GuardRedirects(check func(*url.URL) error) {
	c.HTTP.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.Errorf("stopped after %d redirects", maxRedirects)
		}
		if check != nil {
			return check(req.URL)
		}
		return nil
	}
}

// Do 发送请求并读完响应体。
// 非 2xx → upstream_unavailable（带状态码）；网络错误/超时 → upstream_unavailable（状态码 0）。
func (c *Client) Do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	callLatency.WithLabelValues(c.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		callTotal.WithLabelValues(c.Name, "error").Inc()
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, domain.UpstreamUnavailable(0, errors.WithStack(err))
	}
	defer resp.Body.Close()
	callTotal.WithLabelValues(c.Name, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, domain.UpstreamUnavailable(resp.StatusCode,
			errors.Errorf("%s %s: status %d", req.Method, req.URL.Redacted(), resp.StatusCode))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, domain.UpstreamUnavailable(0, errors.WithStack(err))
	}
	if len(b) > maxBody {
		return nil, domain.UpstreamMalformed(errors.Errorf("%s %s: body too large (> %d bytes)", req.Method, req.URL.Redacted(), maxBody))
	}
	return b, nil
}

func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.Validation("invalid upstream url: %v", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}
