package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireAndForgetClampsTimeoutsWithoutCapabilities(t *testing.T) {
	hanging := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(30 * time.Second):
		}
	}))
	defer hanging.Close()

	d, err := New(Settings{
		MaxConcurrency: 4,
		TotalTimeout:   60 * time.Second,
	}, Capabilities{})
	require.NoError(t, err)
	d.AddGet("hang", hanging.URL, nil)

	start := time.Now()
	started := d.FireAndForget(context.Background())
	elapsed := time.Since(start)

	// No background execution exists without runtime capabilities: the run
	// happens inline, bounded by the 1s clamp instead of the configured 60s.
	assert.False(t, started)
	assert.Less(t, elapsed, 5*time.Second)

	// The original configuration is restored afterwards.
	d.mu.Lock()
	assert.Equal(t, 60*time.Second, d.settings.TotalTimeout)
	d.mu.Unlock()
}

func TestFireAndForgetFlushesResponseFirst(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	var order []string
	caps := Capabilities{
		FinishResponse: func() error {
			order = append(order, "flush")
			return nil
		},
	}
	d, err := New(Settings{}, caps)
	require.NoError(t, err)
	d.AddGet("a", srv.URL, nil)
	d.OnResult("a", func(Result, string) {
		order = append(order, "request")
	})

	started := d.FireAndForget(context.Background())
	assert.True(t, started)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []string{"flush", "request"}, order)
}

func TestFireAndForgetFlushFailureStillRunsBatch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	d, err := New(Settings{}, Capabilities{
		FinishResponse: func() error { return errors.New("already flushed") },
	})
	require.NoError(t, err)
	d.AddGet("a", srv.URL, nil)

	assert.True(t, d.FireAndForget(context.Background()))
	assert.Equal(t, int32(1), hits.Load())
}

func TestFireAndForgetOffloadsToBackgroundTask(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	done := make(chan struct{})
	caps := Capabilities{
		OffloadTask: func(fn func()) {
			go func() {
				fn()
				close(done)
			}()
		},
	}
	d, err := New(Settings{}, caps)
	require.NoError(t, err)
	d.AddGet("a", srv.URL, nil)

	started := d.FireAndForget(context.Background())
	assert.True(t, started)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("offloaded batch never ran")
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestFireAndForgetSurvivesBatchOutlivingCallerContext(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		hits.Add(1)
	}))
	defer srv.Close()

	done := make(chan struct{})
	d, err := New(Settings{}, Capabilities{
		OffloadTask: func(fn func()) {
			go func() {
				fn()
				close(done)
			}()
		},
	})
	require.NoError(t, err)
	d.AddGet("a", srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, d.FireAndForget(ctx))
	cancel() // the caller moves on; the batch must not be cancelled with it
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("offloaded batch never completed")
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestFireAndForgetSwallowsPanics(t *testing.T) {
	d, err := New(Settings{}, Capabilities{
		FinishResponse: func() error { panic("runtime fault") },
	})
	require.NoError(t, err)

	started := false
	assert.NotPanics(t, func() {
		started = d.FireAndForget(context.Background())
	})
	assert.False(t, started)
}

func TestStrategySelection(t *testing.T) {
	flush := func() error { return nil }
	offload := func(func()) {}

	assert.IsType(t, flushThenRun{}, selectStrategy(Capabilities{FinishResponse: flush, OffloadTask: offload}))
	assert.IsType(t, offloadThenRun{}, selectStrategy(Capabilities{OffloadTask: offload}))
	assert.IsType(t, clampThenRun{}, selectStrategy(Capabilities{}))
}
