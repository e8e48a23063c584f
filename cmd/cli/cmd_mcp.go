package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dradis-tools/dradis-mcp/pkg/config"
	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
	"github.com/dradis-tools/dradis-mcp/pkg/mcpserver"
	"github.com/dradis-tools/dradis-mcp/pkg/metrics"
	"github.com/dradis-tools/dradis-mcp/pkg/restapi"
	"github.com/dradis-tools/dradis-mcp/pkg/session"
	"github.com/dradis-tools/dradis-mcp/pkg/telemetry"
	"github.com/dradis-tools/dradis-mcp/pkg/ui"
)

// runMCP starts the MCP server.
// Supports two transport modes:
//   - --stdio (default): for IDE integrations (VS Code, Claude Desktop, Cursor)
//   - --http <addr>:     streamable HTTP + SSE, plus the REST facade and /metrics
func runMCP() {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)

	stdio := fs.Bool("stdio", true, "Use stdio transport (default, for IDE integration)")
	httpAddr := fs.String("http", "", "HTTP address to listen on (e.g. :8080). Disables stdio.")
	configFile := fs.String("config", "", "Optional YAML configuration file")
	noColor := fs.Bool("no-color", false, "Disable colored stderr output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s mcp [flags]\n\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "Start an MCP server bridging a Dradis Pro instance.\n\n")
		fmt.Fprintf(os.Stderr, "Transports:\n")
		fmt.Fprintf(os.Stderr, "  --stdio          Stdio transport for IDE integration (default)\n")
		fmt.Fprintf(os.Stderr, "  --http <addr>    Streamable HTTP transport + REST facade\n\n")
		fmt.Fprintf(os.Stderr, "Environment variables:\n")
		fmt.Fprintf(os.Stderr, "  %s                      Dradis instance URL (required)\n", defaults.EnvURL)
		fmt.Fprintf(os.Stderr, "  %s                Dradis API token (required)\n", defaults.EnvAPIToken)
		fmt.Fprintf(os.Stderr, "  %s          Default team id for project creation\n", defaults.EnvDefaultTeamID)
		fmt.Fprintf(os.Stderr, "  %s      Default report template properties id\n", defaults.EnvDefaultTemplateID)
		fmt.Fprintf(os.Stderr, "  %s         Default project template name\n", defaults.EnvDefaultTemplate)
		fmt.Fprintf(os.Stderr, "  %s  Comma-separated vulnerability field list\n", defaults.EnvVulnerabilityParameters)
		fmt.Fprintf(os.Stderr, "  %s              HTTP listen address (same as --http)\n", defaults.EnvHTTPAddr)
		fmt.Fprintf(os.Stderr, "  %s          OTLP gRPC endpoint for trace export\n\n", defaults.EnvOTLPEndpoint)
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s mcp --stdio\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "  %s mcp --http :8080\n\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[mcpArgsOffset():]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	ui.SetNoColor(*noColor)

	// Allow env var override for the HTTP address (useful in Docker/K8s).
	if *httpAddr == "" {
		*httpAddr = os.Getenv(defaults.EnvHTTPAddr)
	}

	// --- Startup validation: configuration ---
	cfg, err := config.Load(*configFile)
	if err != nil {
		ui.Errorf("configuration: %v", err)
		fmt.Fprintf(os.Stderr, "hint: set %s and %s, or point --config at a YAML file\n",
			defaults.EnvURL, defaults.EnvAPIToken)
		os.Exit(1)
	}

	// Logging goes to stderr: stdout belongs to the stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: os.Getenv(defaults.EnvOTLPEndpoint),
		Insecure: true,
	})
	if err != nil {
		ui.Errorf("telemetry: %v", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	recorder := metrics.NewRecorder()
	client := dradis.NewClient(cfg.URL, cfg.APIToken, cfg.VulnerabilityFields, dradis.Options{
		Logger:   logger,
		Recorder: recorder,
	})
	orch := session.New(client, session.Defaults{
		TeamID:     cfg.DefaultTeamID,
		TemplateID: cfg.DefaultTemplateID,
		Template:   cfg.DefaultTemplate,
	})

	srv := mcpserver.New(&mcpserver.Config{
		Orchestrator:        orch,
		VulnerabilityFields: cfg.VulnerabilityFields,
	})
	srv.MarkReady()

	if *httpAddr != "" {
		*stdio = false
		runHTTP(ctx, *httpAddr, srv, orch, recorder, logger)
		return
	}

	// Stdio transport mode (default)
	if *stdio {
		ui.Infof("%s connected to %s (stdio transport)", ui.UserAgent(), cfg.URL)
		if err := srv.RunStdio(ctx); err != nil {
			ui.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	ui.Errorf("no transport selected, use --stdio or --http <addr>")
	os.Exit(1)
}

// runHTTP serves the MCP HTTP transports, the REST facade, and /metrics
// on one listener, with graceful shutdown on SIGINT/SIGTERM.
func runHTTP(ctx context.Context, addr string, srv *mcpserver.Server, orch *session.Orchestrator, recorder *metrics.Recorder, logger *slog.Logger) {
	ui.PrintBanner()
	facade := restapi.New(orch, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", facade.Router())
	mux.Handle("/metrics", recorder.Handler())
	mux.Handle("/", srv.HTTPHandler())

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: defaults.ReadHeaderTimeout,
		// WriteTimeout intentionally 0: SSE streams are long-lived and any
		// non-zero value sets an absolute deadline that kills them.
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaults.ShutdownTimeout)
		defer shutdownCancel()
		ui.Infof("shutting down gracefully…")
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			ui.Errorf("shutdown: %v", err)
		}
	}()

	ui.Infof("%s MCP server listening on %s (HTTP transport)", ui.UserAgent(), addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
}

// mcpArgsOffset returns where the mcp flag args start: os.Args[2:] for
// "dradis-mcp mcp --http :8080", os.Args[1:] for a bare "dradis-mcp".
func mcpArgsOffset() int {
	if len(os.Args) >= 2 && (os.Args[1] == "mcp" || os.Args[1] == "serve") {
		return 2
	}
	return 1
}
