package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verse-server/backend/internal/config"
	"github.com/verse-server/backend/internal/engine"
	"github.com/verse-server/backend/internal/logging"
	"github.com/verse-server/backend/internal/mock"
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/ws"
)

type flags struct {
	config    string
	host      string
	port      int
	verbosity string
	codec     string
	mock      bool
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "verse-server",
		Short:         "Scene graph replication server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(f.config)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = f.host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = f.port
			}
			if cmd.Flags().Changed("verbosity") {
				cfg.Log.Verbosity = f.verbosity
			}
			if cmd.Flags().Changed("codec") {
				cfg.Codec = f.codec
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f.mock)
		},
	}
	cmd.Flags().StringVar(&f.config, "config", "config.yaml", "path to config file")
	cmd.Flags().StringVar(&f.host, "host", "", "override listen host")
	cmd.Flags().IntVar(&f.port, "port", 0, "override listen port")
	cmd.Flags().StringVar(&f.verbosity, "verbosity", "", "log verbosity (silent, error, warn, info, debug, trace)")
	cmd.Flags().StringVar(&f.codec, "codec", "", "wire codec (json, msgpack)")
	cmd.Flags().BoolVar(&f.mock, "mock", false, "drive the server with scripted mock peers")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, mockMode bool) error {
	level, err := logging.ParseVerbosity(cfg.Log.Verbosity)
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, level)

	codec, err := protocol.NewCodec(cfg.Codec)
	if err != nil {
		return err
	}

	hub := ws.NewHub(ws.HubOptions{
		MaxConnections: cfg.Server.MaxConnections,
		SendBuffer:     cfg.Server.SendBuffer,
		InboundQueue:   cfg.Engine.InboundQueue,
		WriteTimeout:   cfg.Server.WriteTimeout,
		ReadLimit:      ws.DefaultHubOptions().ReadLimit,
	}, engine.Options{
		HostName:       cfg.Engine.HostName,
		NodeChunk:      cfg.Engine.NodeChunk,
		TableChunk:     cfg.Engine.TableChunk,
		SparseChunk:    cfg.Engine.SparseChunk,
		MaxGrowth:      cfg.Engine.MaxGrowth,
		MaxBitmapBytes: cfg.Engine.MaxBitmapBytes,
	}, codec, log)

	opts := ws.ServerOptions{AllowedOrigins: cfg.Server.AllowedOrigins}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(hub.Collectors()...)
		opts.Metrics = reg
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ws.NewServer(hub, opts, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		log.Infof("listening on %s (codec %s)", srv.Addr, cfg.Codec)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if mockMode {
		g.Go(func() error {
			log.Infof("starting mock peers")
			gen := mock.NewGenerator(localURL(cfg), codec, log)
			if err := gen.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// localURL is the websocket endpoint as seen from this host.
func localURL(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)))
}
