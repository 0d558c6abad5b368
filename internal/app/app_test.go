package app

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/pager/internal/config"
	"github.com/five82/pager/internal/demo"
	"github.com/five82/pager/internal/metrics"
	"github.com/five82/pager/internal/spindle"
)

func TestNewFeedsPageThroughDemo(t *testing.T) {
	ctx := context.Background()
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv := demo.New(demo.Options{Items: 7}, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	client, err := spindle.NewClient(ts.URL)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.PageSize = 3
	recorder := metrics.NewRecorder()
	queue, logs := newFeeds(cfg, client, log, recorder)

	require.NoError(t, queue.Refresh(ctx))
	require.NoError(t, queue.Append(ctx))
	require.NoError(t, queue.Append(ctx))
	s := queue.State()
	require.Len(t, s.Items, 7)
	assert.Equal(t, int64(7), s.Items[6].ID)

	require.NoError(t, logs.Refresh(ctx))
	require.NoError(t, logs.Append(ctx))
	assert.Len(t, logs.State().Items, 6)

	gathered, err := testutil.GatherAndCount(recorder.Registry(), "pager_loads_total")
	require.NoError(t, err)
	assert.Equal(t, 4, gathered)
}

func TestRunDemoStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunDemo(ctx, DemoOptions{
			ConfigPath: t.TempDir() + "/missing.toml",
			Listen:     "127.0.0.1:0",
			Items:      3,
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunDemo did not stop")
	}
}
