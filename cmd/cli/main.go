// Command dradis-mcp bridges a Dradis Pro instance to AI assistants over
// the Model Context Protocol, with an optional HTTP/REST facade.
package main

import (
	"fmt"
	"os"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
	"github.com/dradis-tools/dradis-mcp/pkg/ui"
)

func main() {
	if len(os.Args) < 2 {
		// Bare invocation starts the stdio MCP server: that is what MCP
		// host configs (claude_desktop_config.json etc.) expect to exec.
		runMCP()
		return
	}

	switch os.Args[1] {
	case "mcp", "serve":
		runMCP()
	case "test-connection":
		runTestConnection()
	case "version", "--version", "-v":
		fmt.Printf("%s %s (built %s, commit %s)\n", defaults.ToolName, ui.Version, ui.BuildDate, ui.Commit)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n\n", defaults.ToolName)
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  mcp              Start the MCP server (default when no command given)\n")
	fmt.Fprintf(os.Stderr, "  test-connection  Verify connectivity to the configured Dradis instance\n")
	fmt.Fprintf(os.Stderr, "  version          Print version information\n\n")
	fmt.Fprintf(os.Stderr, "Run '%s mcp --help' for transport flags.\n", defaults.ToolName)
}

// envOrDefault returns the environment variable value if set, otherwise the default.
func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
