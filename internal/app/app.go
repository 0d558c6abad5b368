package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/pager/internal/config"
	"github.com/five82/pager/internal/demo"
	"github.com/five82/pager/internal/logging"
	"github.com/five82/pager/internal/metrics"
	"github.com/five82/pager/internal/prefs"
	"github.com/five82/pager/internal/spindle"
	"github.com/five82/pager/internal/ui"
	"github.com/five82/pager/paging"
)

// Options configure the pager application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pager/prefs.toml
	View       string // queue or logs; empty uses the stored preference
}

// Run boots the pager TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)
	view := userPrefs.View
	if opts.View != "" {
		view = opts.View
	}

	log, closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := spindle.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init spindle client: %w", err)
	}
	log.WithField("api", client.BaseURL()).Info("pager starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	queue, logs := newFeeds(cfg, client, log, recorder)
	if cfg.Logs.Follow > 0 {
		StartFollower[spindle.LogEvent](ctx, logs, cfg.Logs.Follow, log)
	}

	return ui.Run(ui.Options{
		Context:          ctx,
		Queue:            queue,
		Logs:             logs,
		PrefetchDistance: cfg.PrefetchDistance,
		ThemeName:        userPrefs.Theme,
		View:             view,
		PrefsPath:        prefsPath,
		APIBind:          cfg.APIBind,
		Logger:           log,
	})
}

// newFeeds builds the queue and log controllers over f.
func newFeeds(cfg config.Config, f spindle.Fetcher, log logrus.FieldLogger, observer paging.Observer) (*paging.Controller[int, spindle.QueueItem], *paging.Controller[uint64, spindle.LogEvent]) {
	queue := paging.New[int, spindle.QueueItem](0,
		spindle.QueueSource(f, cfg.PageSize),
		paging.WithName("queue"),
		paging.WithLogger(log),
		paging.WithObserver(observer),
	)
	logs := paging.New[uint64, spindle.LogEvent](0,
		spindle.LogSource{
			Fetcher:   f,
			Limit:     cfg.PageSize,
			Component: cfg.Logs.Component,
			Level:     cfg.Logs.Level,
		},
		paging.WithName("logs"),
		paging.WithLogger(log),
		paging.WithObserver(observer),
	)
	return queue, logs
}

// DemoOptions override the [demo] section of the config file. Zero values
// keep the configured setting.
type DemoOptions struct {
	ConfigPath string
	Listen     string
	Items      int
	Latency    time.Duration
	FailEvery  int
}

// RunDemo serves the synthetic spindle API until the context is cancelled.
func RunDemo(ctx context.Context, opts DemoOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Demo.Listen = opts.Listen
	}
	if opts.Items > 0 {
		cfg.Demo.Items = opts.Items
	}
	if opts.Latency > 0 {
		cfg.Demo.Latency = opts.Latency
	}
	if opts.FailEvery > 0 {
		cfg.Demo.FailEvery = opts.FailEvery
	}

	// The demo has no TUI, so it logs to stderr.
	log, closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	srv := demo.New(demo.Options{
		Items:     cfg.Demo.Items,
		Latency:   cfg.Demo.Latency,
		FailEvery: cfg.Demo.FailEvery,
		Grow:      time.Second,
	}, log)
	return srv.ListenAndServe(ctx, cfg.Demo.Listen)
}
