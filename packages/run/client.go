package run

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/curlew-http/curlew/packages/cli"
)

const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Client wraps net/http with the transport behavior selected by the
// resolved options: proxy routing, TLS trust, redirect policy, timeouts
// and cookie persistence.
type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	connectTimeout time.Duration
	followRedirect bool
	maxRedirects   *int // nil means unlimited
	insecure       bool
	caCertFile     string
	proxyURL       string
	noProxyHosts   []string
	compressed     bool
	userAgent      string
	username       string
	password       string
}

type ClientOption func(*Client)

// NewClient builds a client from functional options. It fails when the
// CA certificate file or the cookie input file cannot be used.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeout:        cli.DefaultTimeout,
		connectTimeout: cli.DefaultConnectTimeout,
		followRedirect: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: c.connectTimeout,
		}).DialContext,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		DisableCompression:  !c.compressed,
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: c.insecure}
	if c.caCertFile != "" {
		pem, err := os.ReadFile(c.caCertFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read CA certificate %s: %w", c.caCertFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", c.caCertFile)
		}
		tlsConfig.RootCAs = pool
	}
	transport.TLSClientConfig = tlsConfig

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy address %s: %w", c.proxyURL, err)
		}
		transport.Proxy = func(req *http.Request) (*neturl.URL, error) {
			if c.hostBypassesProxy(req.URL.Hostname()) {
				return nil, nil
			}
			return proxyURL, nil
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create cookie jar: %w", err)
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !c.followRedirect {
				return http.ErrUseLastResponse
			}
			if c.maxRedirects != nil && len(via) >= *c.maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return c, nil
}

// ClientOptionsFrom maps the resolved CLI options onto client options.
func ClientOptionsFrom(o *cli.Options) []ClientOption {
	return []ClientOption{
		WithTimeout(o.Timeout),
		WithConnectTimeout(o.ConnectTimeout),
		WithFollowRedirects(o.FollowLocation),
		WithMaxRedirects(o.MaxRedirect),
		WithInsecure(o.Insecure),
		WithCACertFile(o.CACertFile),
		WithProxy(o.Proxy, o.NoProxy),
		WithCompression(o.Compressed),
		WithUserAgent(o.UserAgent),
		WithUserCredentials(o.User),
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.connectTimeout = d }
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) { c.followRedirect = follow }
}

// WithMaxRedirects bounds redirect chains. A nil limit means follow
// without bound.
func WithMaxRedirects(limit *int) ClientOption {
	return func(c *Client) { c.maxRedirects = limit }
}

func WithInsecure(insecure bool) ClientOption {
	return func(c *Client) { c.insecure = insecure }
}

func WithCACertFile(path string) ClientOption {
	return func(c *Client) { c.caCertFile = path }
}

func WithProxy(proxyURL, noProxy string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
		c.noProxyHosts = nil
		for _, host := range strings.Split(noProxy, ",") {
			if host = strings.TrimSpace(host); host != "" {
				c.noProxyHosts = append(c.noProxyHosts, host)
			}
		}
	}
}

func WithCompression(compressed bool) ClientOption {
	return func(c *Client) { c.compressed = compressed }
}

func WithUserAgent(agent string) ClientOption {
	return func(c *Client) { c.userAgent = agent }
}

// WithUserCredentials takes basic-auth credentials as "user:password".
func WithUserCredentials(user string) ClientOption {
	return func(c *Client) {
		c.username, c.password, _ = strings.Cut(user, ":")
	}
}

func (c *Client) hostBypassesProxy(host string) bool {
	for _, skip := range c.noProxyHosts {
		if strings.EqualFold(host, skip) {
			return true
		}
	}
	return false
}

// Do plays one request and collects the full response body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var body *bytes.Buffer
	if req.Body != "" {
		body = bytes.NewBufferString(req.Body)
	} else {
		body = &bytes.Buffer{}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}
	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := readBody(httpResp)
	if err != nil {
		return nil, fmt.Errorf("cannot read response body: %w", err)
	}

	headers := make(map[string]string, len(httpResp.Header))
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    headers,
		Body:       respBody,
		Duration:   duration,
	}, nil
}
