package dispatch

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quiver/config"
	"quiver/httpcall"
	"quiver/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

// Settings configures one dispatcher instance. Mutated only before a batch
// runs; read-only during execution.
type Settings struct {
	MaxConcurrency int
	ConnectTimeout time.Duration
	TotalTimeout   time.Duration
	UserAgent      string
	TLS            config.TLSConfig
}

// SettingsFrom converts the loaded dispatch configuration.
func SettingsFrom(cfg config.DispatchConfig) Settings {
	return Settings{
		MaxConcurrency: cfg.MaxConcurrency,
		ConnectTimeout: time.Duration(cfg.ConnectTimeoutSeconds) * time.Second,
		TotalTimeout:   time.Duration(cfg.TotalTimeoutSeconds) * time.Second,
		UserAgent:      cfg.UserAgent,
		TLS:            cfg.TLS,
	}
}

func (s *Settings) normalize() {
	if s.MaxConcurrency < config.MinConcurrency {
		if s.MaxConcurrency == 0 {
			s.MaxConcurrency = config.DefaultMaxConcurrency
		} else {
			s.MaxConcurrency = config.MinConcurrency
		}
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = time.Duration(config.DefaultConnectTimeout) * time.Second
	} else if s.ConnectTimeout < time.Second {
		s.ConnectTimeout = time.Second
	}
	if s.TotalTimeout <= 0 {
		s.TotalTimeout = time.Duration(config.DefaultTotalTimeout) * time.Second
	} else if s.TotalTimeout < time.Second {
		s.TotalTimeout = time.Second
	}
}

// Dispatcher queues named requests and executes them concurrently up to the
// configured cap. One dispatcher serves one call site; it is not safe to
// share across independent goroutines while a batch is queued or running.
type Dispatcher struct {
	settings       Settings
	defaultHeaders map[string]string
	transport      *http.Transport
	strategy       strategy

	mu        sync.Mutex
	pending   []*Request
	callbacks map[string]Callback
}

// New builds a dispatcher. The capability descriptor decides the
// fire-and-forget strategy once, at construction.
func New(settings Settings, caps Capabilities) (*Dispatcher, error) {
	settings.normalize()

	tlsConf, err := httpcall.TLSConfigFrom(settings.TLS)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		TLSClientConfig:     tlsConf,
		MaxIdleConns:        settings.MaxConcurrency,
		MaxIdleConnsPerHost: settings.MaxConcurrency,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout:   settings.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &Dispatcher{
		settings:       settings,
		defaultHeaders: make(map[string]string),
		transport:      transport,
		strategy:       selectStrategy(caps),
		callbacks:      make(map[string]Callback),
	}, nil
}

// SetDefaultHeader registers a header applied to every queued request
// unless the request carries its own value.
func (d *Dispatcher) SetDefaultHeader(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaultHeaders[name] = value
}

// Add queues a request and returns its id, generating one when the caller
// left it blank.
func (d *Dispatcher) Add(req *Request) string {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, req)
	return req.ID
}

// AddGet queues a GET with the given query parameters appended.
func (d *Dispatcher) AddGet(id, rawurl string, query map[string]string) string {
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
	return d.Add(&Request{ID: id, Method: http.MethodGet, URL: target})
}

// AddPost queues a POST with a JSON object body.
func (d *Dispatcher) AddPost(id, rawurl string, data map[string]any) string {
	return d.Add(&Request{ID: id, Method: http.MethodPost, URL: rawurl, JSON: data})
}

// AddPut queues a PUT with a JSON object body.
func (d *Dispatcher) AddPut(id, rawurl string, data map[string]any) string {
	return d.Add(&Request{ID: id, Method: http.MethodPut, URL: rawurl, JSON: data})
}

// OnResult registers a callback invoked when the request with the given id
// completes. Callbacks are cleared after each batch.
func (d *Dispatcher) OnResult(id string, fn Callback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks[id] = fn
}

// QueueSize reports how many requests are waiting for the next batch.
func (d *Dispatcher) QueueSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

type completion struct {
	id     string
	result Result
}

// ExecuteAll drains the queue and blocks until every request completed.
// Admission into the in-flight window is FIFO and capped at
// MaxConcurrency; callbacks fire in completion order. Every queued request
// gets exactly one entry in the returned map, including requests whose
// transport handle could not be built.
func (d *Dispatcher) ExecuteAll(ctx context.Context) map[string]Result {
	d.mu.Lock()
	queue := d.pending
	d.pending = nil
	callbacks := d.callbacks
	d.callbacks = make(map[string]Callback)
	settings := d.settings
	headers := make(map[string]string, len(d.defaultHeaders))
	for k, v := range d.defaultHeaders {
		headers[k] = v
	}
	d.mu.Unlock()

	results := make(map[string]Result, len(queue))
	if len(queue) == 0 {
		return results
	}
	log.Debugf("executing batch of %d requests (max concurrency %d)", len(queue), settings.MaxConcurrency)

	// Total timeout is enforced per request via context; the client itself
	// carries no deadline.
	client := &http.Client{Transport: d.transport}

	completions := make(chan completion)
	sem := make(chan struct{}, settings.MaxConcurrency)

	go func() {
		var wg sync.WaitGroup
		for _, req := range queue {
			sem <- struct{}{}
			wg.Add(1)
			go func(r *Request) {
				defer wg.Done()
				completions <- completion{r.ID, d.perform(ctx, client, settings, headers, r)}
				<-sem
			}(req)
		}
		wg.Wait()
		close(completions)
	}()

	for c := range completions {
		results[c.id] = c.result
		if cb, ok := callbacks[c.id]; ok && cb != nil {
			cb(c.result, c.id)
		}
	}
	return results
}

// WaitForAll is ExecuteAll under the name callers of the fire-and-forget
// path use when they decide to block after all.
func (d *Dispatcher) WaitForAll(ctx context.Context) map[string]Result {
	return d.ExecuteAll(ctx)
}

func (d *Dispatcher) perform(ctx context.Context, client *http.Client, settings Settings, headers map[string]string, r *Request) Result {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, settings.TotalTimeout)
	defer cancel()

	httpReq, err := r.build(reqCtx, headers, settings.UserAgent)
	if err != nil {
		// Synthesized failure so the result map stays complete.
		return Result{
			StatusCode: 0,
			Err:        "creating request: " + err.Error(),
			Duration:   time.Since(start),
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		log.Debugf("request %s failed: %v", r.ID, err)
		return Result{
			StatusCode: 0,
			Err:        err.Error(),
			Duration:   time.Since(start),
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	result := Result{
		Body:       string(body),
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
	}
	if readErr != nil {
		result.Err = readErr.Error()
		return result
	}
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 400
	return result
}
