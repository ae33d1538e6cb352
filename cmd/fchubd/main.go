package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"xdao.co/fchub/hub"
	"xdao.co/fchub/internal/logging"
	"xdao.co/fchub/message"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// run serves an in-memory hub until ctx is done.
func run(ctx context.Context, args []string, errOut io.Writer) int {
	fs := flag.NewFlagSet("fchubd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	listen := fs.String("listen", "127.0.0.1:2283", "gRPC listen address")
	network := fs.String("network", "mainnet", "Network the hub accepts: mainnet, testnet or devnet")
	metricsListen := fs.String("metrics-listen", "", "Serve Prometheus metrics on this address (disabled when empty)")
	env := fs.String("env", envOr("ENV", "development"), "development for console logs, anything else for JSON")
	logLevel := fs.String("log-level", "info", "Log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	hubNetwork, err := message.ParseNetwork(*network)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	logger := logging.New(*env, *logLevel, errOut)

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		logger.Error().Err(err).Str("listen", *listen).Msg("listen failed")
		return 1
	}
	defer lis.Close()

	s := hub.NewServer()
	hub.RegisterHubServiceServer(s, hub.NewMemoryHub(hubNetwork, &logger))

	var metrics *http.Server
	if *metricsListen != "" {
		metrics = serveMetrics(*metricsListen, logger)
	}

	logger.Info().Str("listen", lis.Addr().String()).Str("network", hubNetwork.String()).Msg("fchubd listening")
	if err := serve(ctx, s, lis, metrics, logger); err != nil {
		logger.Error().Err(err).Msg("serve failed")
		return 1
	}
	return 0
}

// serve runs s on lis until ctx is done or Serve fails. Either way the
// servers are stopped before it returns.
func serve(ctx context.Context, s *grpc.Server, lis net.Listener, metrics *http.Server, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if metrics != nil {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			_ = metrics.Shutdown(shutdownCtx)
			cancelShutdown()
		}
		s.GracefulStop()
	}()

	err := s.Serve(lis)
	cancel()
	<-stopped
	return err
}

func serveMetrics(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info().Str("listen", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
