package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goMarketd/internal/config"
	"github.com/LeJamon/goMarketd/internal/grpc"
	"github.com/LeJamon/goMarketd/internal/rpc"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the marketplace daemon",
	Long: `Start marketd, which provides:
- HTTP JSON-RPC API on /
- WebSocket stream of committed market events on /ws
- Health check endpoint on /health

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, logger)
}

// serve runs the daemon until ctx is cancelled or a component fails.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	n, err := openNode(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer n.Close()

	rpcServer := rpc.NewServer(n.services(), rpc.Options{
		Timeout:   cfg.Server.ReadTimeout,
		Admin:     cfg.Server.Admin,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Logger:    logger,
	})
	httpServer, stream := newHTTPServer(cfg, n, rpcServer, logger)

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer, err = grpc.NewServer(cfg.GRPC.ServerConfig(cfg.Server.Admin), rpcServer, logger)
		if err != nil {
			return err
		}
		if err := grpcServer.Listen(); err != nil {
			return fmt.Errorf("failed to listen for grpc: %w", err)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return n.runRecorder(gCtx)
	})
	g.Go(func() error {
		logger.Info("rpc server listening",
			zap.String("addr", httpServer.Addr),
			zap.Bool("websocket", stream != nil))
		if !quiet {
			fmt.Printf("marketd listening on http://%s/\n", httpServer.Addr)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if grpcServer != nil {
		g.Go(func() error {
			return grpcServer.Serve(nil)
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		if stream != nil {
			stream.Close()
		}
		if grpcServer != nil {
			grpcServer.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newHTTPServer wires the RPC server and, when enabled, the event stream.
func newHTTPServer(cfg *config.Config, n *node, server *rpc.Server, logger *zap.Logger) (*http.Server, *rpc.StreamServer) {
	var stream *rpc.StreamServer
	if cfg.Server.WebSocket {
		stream = rpc.NewStreamServer(
			cfg.Server.SendQueueLimit,
			time.Duration(cfg.Server.PingFrequencySecs)*time.Second,
			logger,
		)
		n.engine.Subscribe(rpc.NewPublisher(stream, logger))
	}

	mux := rpc.NewMux(server, stream)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"marketd"}`))
	})

	return &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, stream
}
