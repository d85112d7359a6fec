package httpcall

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"quiver/config"
	"quiver/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

// RetryPolicy controls synchronous re-issue of a failed call. The zero
// value means a single attempt.
type RetryPolicy struct {
	MaxAttempts        int
	Delay              time.Duration
	RetryOnStatus      []int
	RetryNetworkErrors bool
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryStatus(code int) bool {
	for _, s := range p.RetryOnStatus {
		if s == code {
			return true
		}
	}
	return false
}

// Client issues one logical HTTP call per invocation. It is not safe for
// concurrent use: the post-call accessors report the most recent call.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	defaultHeaders map[string]string
	retry          RetryPolicy

	lastStatus int
	lastBody   string
	lastErr    error
}

// New builds a client from the given settings.
func New(cfg config.ClientConfig) (*Client, error) {
	tlsConf, err := TLSConfigFrom(cfg.TLS)
	if err != nil {
		return nil, err
	}
	connectTimeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	if connectTimeout < time.Second {
		connectTimeout = time.Duration(config.DefaultConnectTimeout) * time.Second
	}
	totalTimeout := time.Duration(cfg.TotalTimeoutSeconds) * time.Second
	if totalTimeout < time.Second {
		totalTimeout = time.Duration(config.DefaultTotalTimeout) * time.Second
	}

	transport := &http.Transport{
		TLSClientConfig: tlsConf,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   totalTimeout,
			Transport: transport,
		},
		userAgent:      cfg.UserAgent,
		defaultHeaders: make(map[string]string),
		retry: RetryPolicy{
			MaxAttempts:        cfg.Retry.MaxAttempts,
			Delay:              time.Duration(cfg.Retry.DelaySeconds) * time.Second,
			RetryOnStatus:      cfg.Retry.RetryOnStatus,
			RetryNetworkErrors: cfg.Retry.RetryNetworkErrors,
		},
	}, nil
}

// NewDefault builds a client with transport defaults and no retry.
func NewDefault() *Client {
	c, _ := New(config.ClientConfig{
		ConnectTimeoutSeconds: config.DefaultConnectTimeout,
		TotalTimeoutSeconds:   config.DefaultTotalTimeout,
	})
	return c
}

// SetDefaultHeader registers a header sent on every call. Call-specific
// headers are not supported here; the batch dispatcher covers that case.
func (c *Client) SetDefaultHeader(name, value string) {
	c.defaultHeaders[name] = value
}

// SetRetryPolicy replaces the retry policy.
func (c *Client) SetRetryPolicy(p RetryPolicy) {
	c.retry = p
}

// Get issues a GET with the given query parameters appended.
func (c *Client) Get(rawurl string, query map[string]string) (string, error) {
	target := rawurl
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		sep := "?"
		if u, err := url.Parse(rawurl); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target = rawurl + sep + values.Encode()
	}
	return c.execute(http.MethodGet, target, nil)
}

// Post issues a POST with the data JSON-encoded.
func (c *Client) Post(rawurl string, data map[string]any) (string, error) {
	return c.execute(http.MethodPost, rawurl, jsonBody(data))
}

// Put issues a PUT with the data JSON-encoded.
func (c *Client) Put(rawurl string, data map[string]any) (string, error) {
	return c.execute(http.MethodPut, rawurl, jsonBody(data))
}

// PostForm issues a POST with URL-encoded form fields.
func (c *Client) PostForm(rawurl string, fields map[string]string) (string, error) {
	return c.execute(http.MethodPost, rawurl, func() (io.Reader, string, error) {
		values := url.Values{}
		for k, v := range fields {
			values.Set(k, v)
		}
		return bytes.NewBufferString(values.Encode()), "application/x-www-form-urlencoded", nil
	})
}

// PostRaw issues a POST with an explicit body and content type.
func (c *Client) PostRaw(rawurl string, contentType string, body []byte) (string, error) {
	return c.execute(http.MethodPost, rawurl, func() (io.Reader, string, error) {
		return bytes.NewReader(body), contentType, nil
	})
}

// PostMultipart issues a multipart POST with text fields plus files given
// as field-name to path.
func (c *Client) PostMultipart(rawurl string, fields map[string]string, files map[string]string) (string, error) {
	return c.execute(http.MethodPost, rawurl, func() (io.Reader, string, error) {
		return MultipartBody(fields, files)
	})
}

// StatusCode returns the HTTP status of the most recent call, 0 if the
// transport never connected.
func (c *Client) StatusCode() int {
	return c.lastStatus
}

// LastError returns the most recent transport error message, empty when
// the call succeeded.
func (c *Client) LastError() string {
	if c.lastErr == nil {
		return ""
	}
	return c.lastErr.Error()
}

// RawBody returns the most recent response body.
func (c *Client) RawBody() string {
	return c.lastBody
}

// execute runs the retry loop. The body builder is re-invoked on every
// attempt so each request gets a fresh reader.
func (c *Client) execute(method, rawurl string, build func() (io.Reader, string, error)) (string, error) {
	c.lastStatus = 0
	c.lastBody = ""
	c.lastErr = nil

	attempts := c.retry.attempts()
	for attempt := 1; ; attempt++ {
		var body io.Reader
		var contentType string
		if build != nil {
			var err error
			body, contentType, err = build()
			if err != nil {
				c.lastErr = err
				return "", err
			}
		}

		req, err := http.NewRequest(method, rawurl, body)
		if err != nil {
			c.lastErr = err
			return "", err
		}
		for k, v := range c.defaultHeaders {
			req.Header.Set(k, v)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.lastErr = err
			if c.retry.RetryNetworkErrors && attempt < attempts {
				log.Debugf("attempt %d/%d failed: %v", attempt, attempts, err)
				time.Sleep(c.retry.Delay)
				continue
			}
			return "", err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.lastStatus = resp.StatusCode
		c.lastBody = string(respBody)
		if readErr != nil {
			c.lastErr = readErr
			return "", readErr
		}

		if attempt < attempts && c.retry.retryStatus(resp.StatusCode) {
			log.Debugf("attempt %d/%d got status %d, retrying", attempt, attempts, resp.StatusCode)
			time.Sleep(c.retry.Delay)
			continue
		}
		return c.lastBody, nil
	}
}

func jsonBody(data map[string]any) func() (io.Reader, string, error) {
	return func() (io.Reader, string, error) {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(encoded), "application/json", nil
	}
}

// MultipartBody encodes text fields plus files (field name to path) as a
// multipart form and returns the reader together with its content type.
func MultipartBody(fields map[string]string, files map[string]string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for field, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		part, err := writer.CreateFormFile(field, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}
