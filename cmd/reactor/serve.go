package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/fixture"
	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/loop"
	"github.com/vango-dev/reactor/pkg/metrics"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/remote"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// app is one served tree: a loop, a runtime, a document and the hub that
// streams it.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	loop    *loop.Loop
	doc     *memory.Document
	hub     *remote.Hub
	root    *renderer.Root
	metrics *metrics.Collector
	server  *http.Server

	// scenes are rendered in turn, one per tick. A single scene stays put.
	scenes   []*vdom.Node
	interval time.Duration
}

func newApp(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) *app {
	a := &app{cfg: cfg, logger: logger}
	a.loop = loop.New(
		loop.WithLogger(logger.With("component", "loop")),
		loop.WithQueueSize(cfg.Loop.QueueSize),
	)

	rtOpts := []reactive.RuntimeOption{
		reactive.WithDeferrer(a.loop),
		reactive.WithLogger(logger.With("component", "reactive")),
		reactive.WithMaxFlushPasses(cfg.Scheduler.MaxFlushPasses),
	}
	hubOpts := []remote.Option{
		remote.WithLogger(logger.With("component", "remote")),
		remote.WithConfig(cfg.RemoteConfig()),
	}
	rOpts := []renderer.Option{
		renderer.WithLogger(logger.With("component", "renderer")),
	}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		metricsHandler = a.metrics.Handler()
		rtOpts = append(rtOpts, reactive.WithObserver(a.metrics))
		hubOpts = append(hubOpts, remote.WithObserver(a.metrics))
		rOpts = append(rOpts, renderer.WithObserver(a.metrics))
	}

	rt := reactive.NewRuntime(rtOpts...)
	a.doc = memory.New(memory.WithLogger(logger.With("component", "document")), memory.WithoutRecording())
	if a.metrics != nil {
		a.doc.Subscribe(a.metrics.ObserveOp)
	}
	a.hub = remote.New(a.doc, a.loop, rt, hubOpts...)
	r := renderer.New(a.doc, append(rOpts, renderer.WithRuntime(rt))...)
	a.root = r.CreateRoot(a.doc.Root())

	a.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.hub.Router(metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.scenes = []*vdom.Node{vdom.Component(demoBoard)}
	return a
}

// run listens on the configured address and serves until ctx is done.
func (a *app) run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, ln)
}

// serve runs the loop, the scene and the HTTP server until ctx is done or
// one of them fails.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.loop.Run(ctx)
	})

	g.Go(func() error {
		return a.play(ctx)
	})

	g.Go(func() error {
		a.logger.Info("listening", "addr", ln.Addr().String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.hub.Close()
		err := a.server.Shutdown(shutdownCtx)
		a.loop.Close()
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// play mounts the first scene and advances through the rest on a ticker.
func (a *app) play(ctx context.Context) error {
	show := func(i int) func() {
		return func() {
			if err := a.root.Render(ctx, a.scenes[i]); err != nil {
				a.logger.Warn("render failed", "scene", i, "error", err)
			}
			a.hub.Publish()
		}
	}
	if err := a.loop.Do(ctx, show(0)); err != nil {
		return err
	}
	if len(a.scenes) < 2 || a.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.loop.Post(show(i % len(a.scenes))); err != nil {
				a.logger.Warn("scene skipped", "error", err)
			}
		}
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr        string
		fixturePath string
		interval    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live tree to WebSocket viewers",
		Long: `Serve a live tree over WebSocket.

Viewers connect to /ws, receive a snapshot and then every batch of host
operations. /healthz, /snapshot and /metrics are served alongside.

Without --fixture a demo board is served; click its buttons through the
event frames to see updates. With --fixture the trees in the file are
rendered in turn, one every --interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			a := newApp(c.cfg, c.logger, prometheus.NewRegistry())
			if fixturePath != "" {
				trees, err := fixture.Load(fixturePath)
				if err != nil {
					return err
				}
				a.scenes = trees
				a.interval = interval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "Serve the trees of a YAML fixture")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Time between fixture trees")

	return cmd
}
