package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"arogya-intake/internal/logging"
	"arogya-intake/internal/mcptools"
)

var version = "dev"

func main() {
	transport := flag.String("transport", "stdio", "Transport mode: stdio or http")
	port := flag.String("port", "8081", "HTTP port (only used with --transport http)")
	flag.Parse()

	// stdout carries the protocol in stdio mode.
	logging.Configure(os.Stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	log := logging.Logger()

	srv := mcptools.New(version)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "stdio":
		log.Info("mcp server starting", "transport", "stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("mcp server stopped", "error", err)
			os.Exit(1)
		}
	case "http":
		addr := ":" + *port
		handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return srv
		}, nil)
		httpSrv := &http.Server{Addr: addr, Handler: handler}
		go func() {
			<-ctx.Done()
			_ = httpSrv.Shutdown(context.Background())
		}()
		log.Info("mcp server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("mcp http server stopped", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("unknown transport (use stdio or http)", "transport", *transport)
		os.Exit(2)
	}
}
