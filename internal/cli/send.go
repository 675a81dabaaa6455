package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
	"github.com/SmitUplenchwar2687/netsender/internal/config"
	"github.com/SmitUplenchwar2687/netsender/internal/logging"
	"github.com/SmitUplenchwar2687/netsender/internal/ratelimit"
	"github.com/SmitUplenchwar2687/netsender/internal/sender"
	"github.com/SmitUplenchwar2687/netsender/internal/server"
	"github.com/SmitUplenchwar2687/netsender/internal/source"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func runSend(cmd *cobra.Command, cfg config.Config) (err error) {
	logger := logging.New(cfg.Debug, cmd.ErrOrStderr())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := resolveSources(cfg.Input.Files, cmd.InOrStdin())
	if err != nil {
		return err
	}
	framingOpts, err := cfg.FramingOptions()
	if err != nil {
		return err
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return err
	}
	transportCfg, err := cfg.TransportConfig()
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(ctx, cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeSinks()) }()

	ch, err := transport.Open(ctx, transportCfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, ch.Close()) }()

	var echo io.Writer
	if cfg.Send.Echo {
		echo = cmd.ErrOrStderr()
	}

	clk := clock.NewRealClock()
	s := sender.New(ch, ratelimit.NewController(schedule, clk), clk, sender.Options{
		Sources:       sources,
		Framing:       framingOpts,
		MaxLength:     cfg.Input.MaxLength,
		MaxMessages:   cfg.Send.MaxMessages,
		Delay:         cfg.Send.Delay,
		Loop:          cfg.Send.Loop,
		Echo:          echo,
		Sink:          sinks,
		HighWaterMark: cfg.Send.HWM,
		Logger:        logger,
	})
	_, err = s.Run(ctx)
	return err
}

func resolveSources(patterns []string, stdin io.Reader) (source.List, error) {
	if len(patterns) == 0 {
		return source.List{Stdin: stdin}, nil
	}
	paths, err := source.Expand(patterns)
	if err != nil {
		return source.List{}, err
	}
	if len(paths) == 0 {
		return source.List{}, fmt.Errorf("no input files in %q", patterns)
	}
	return source.List{Paths: paths}, nil
}

// buildSinks assembles every configured stats destination. The returned
// func releases whatever was opened and is safe to call once.
func buildSinks(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger *zap.Logger) (stats.Sink, func() error, error) {
	sinks := stats.Multi{stats.NewConsole(cmd.OutOrStdout(), cfg.Stats.Quiet)}
	var closers []func() error
	closeAll := func() error {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		return err
	}
	fail := func(err error) (stats.Sink, func() error, error) {
		return nil, nil, multierr.Append(err, closeAll())
	}

	if cfg.Stats.File != "" {
		f, err := os.Create(cfg.Stats.File)
		if err != nil {
			return fail(fmt.Errorf("creating stats file: %w", err))
		}
		closers = append(closers, f.Close)
		sinks = append(sinks, stats.NewRecorder(f))
	}

	if cfg.Stats.Redis.Addr != "" {
		rs, err := stats.NewRedisSink(ctx, stats.RedisOptions{
			Addr:     cfg.Stats.Redis.Addr,
			Password: cfg.Stats.Redis.Password,
			DB:       cfg.Stats.Redis.DB,
			Channel:  cfg.Stats.Redis.Channel,
		})
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rs.Close)
		sinks = append(sinks, rs)
		logger.Info("publishing stats to redis",
			zap.String("addr", cfg.Stats.Redis.Addr),
			zap.String("channel", rs.Channel()))
	}

	if cfg.Stats.Addr != "" {
		metrics := stats.NewMetrics()
		hub := server.NewHub(logger)
		srv := server.New(cfg.Stats.Addr, server.Options{
			Hub:      hub,
			Registry: metrics.Registry(),
			Logger:   logger,
		})

		ln, err := net.Listen("tcp", cfg.Stats.Addr)
		if err != nil {
			return fail(fmt.Errorf("stats server: %w", err))
		}
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.StartOnListener(ln)
		}()
		closers = append(closers, func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err := srv.Shutdown(shutdownCtx)
			if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
				err = multierr.Append(err, serveErr)
			}
			return err
		})
		sinks = append(sinks, metrics, hub)
		fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard: http://%s/dashboard/\n", ln.Addr())
	}

	return sinks, closeAll, nil
}
