package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	internalcommon "github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
)

const (
	shutdownCtxTimeout = 10 * time.Second
	// maxRequestBodySize bounds a single HTTP request, batches included.
	maxRequestBodySize = 5 * 1024 * 1024
)

// Server serves the filter API over JSON-RPC on HTTP.
type Server struct {
	config  config.ServerConfig
	rpc     *rpc.Server
	handler http.Handler
	log     *logger.Logger
}

// NewServer creates the JSON-RPC server for service, with eth_blockNumber served from reader.
func NewServer(cfg config.ServerConfig, service filters.Service, reader chain.Reader, log *logger.Logger) (*Server, error) {
	cfg.ApplyDefaults()
	log = log.WithComponent(internalcommon.ComponentJSONRPC)

	rpcServer := rpc.NewServer()
	rpcServer.SetBatchLimits(cfg.BatchRequestLimit, cfg.BatchResponseMaxSize)
	rpcServer.SetHTTPBodyLimit(maxRequestBodySize)

	if err := rpcServer.RegisterName("eth", NewFilterAPI(service, reader, log)); err != nil {
		return nil, fmt.Errorf("failed to register eth service: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/", rpcServer)

	// Apply middleware
	var h http.Handler = mux
	h = RecoveryMiddleware(log)(h)
	h = LoggingMiddleware(log)(h)

	if cfg.CORS != nil && cfg.CORS.Enabled {
		h = CORSMiddleware(cfg.CORS.AllowedOrigins)(h)
	}

	return &Server{
		config:  cfg,
		rpc:     rpcServer,
		handler: h,
		log:     log,
	}, nil
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout.Duration,
		WriteTimeout: s.config.WriteTimeout.Duration,
		IdleTimeout:  s.config.IdleTimeout.Duration,
	}

	s.log.Infof("Starting JSON-RPC server on %s", listener.Addr())

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.rpc.Stop()
			return fmt.Errorf("JSON-RPC server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownCtxTimeout)
	defer cancel()

	s.log.Info("Shutting down JSON-RPC server...")
	s.rpc.Stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("JSON-RPC server shutdown error: %w", err)
	}

	s.log.Info("JSON-RPC server stopped")
	return nil
}
