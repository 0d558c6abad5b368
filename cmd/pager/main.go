package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/pager/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pager: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "pager",
		Short: "Page through the Spindle queue and daemon logs",
		Long: `pager is a terminal client for the Spindle daemon API. The queue and
the daemon log are loaded page by page as you scroll.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.View {
			case "", "queue", "logs":
			default:
				return fmt.Errorf("--view must be queue or logs, got %q", opts.View)
			}
			return app.Run(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default ~/.config/pager/config.toml)")
	root.Flags().StringVar(&opts.PrefsPath, "prefs", "", "Path to preferences file (default ~/.config/pager/prefs.toml)")
	root.Flags().StringVar(&opts.View, "view", "", "Feed shown at startup: queue or logs")

	root.AddCommand(newDemoCmd(&opts.ConfigPath))
	return root
}

func newDemoCmd(configPath *string) *cobra.Command {
	var (
		listen    string
		items     int
		latency   time.Duration
		failEvery int
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve a synthetic Spindle API to page against",
		Long:  "Serves /api/queue and /api/logs over a generated dataset, with optional latency and periodic 503 responses.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunDemo(cmd.Context(), app.DemoOptions{
				ConfigPath: *configPath,
				Listen:     listen,
				Items:      items,
				Latency:    latency,
				FailEvery:  failEvery,
			})
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config, 127.0.0.1:7487)")
	cmd.Flags().IntVar(&items, "items", 0, "Number of queue items to generate")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Delay added to every response")
	cmd.Flags().IntVar(&failEvery, "fail-every", 0, "Answer every Nth request with 503")

	return cmd
}
