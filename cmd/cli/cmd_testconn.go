package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dradis-tools/dradis-mcp/pkg/config"
	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
	"github.com/dradis-tools/dradis-mcp/pkg/ui"
)

// runTestConnection verifies that the configured Dradis instance is
// reachable and the API token is accepted, by fetching one project.
func runTestConnection() {
	fs := flag.NewFlagSet("test-connection", flag.ExitOnError)

	configFile := fs.String("config", "", "Optional YAML configuration file")
	projectID := fs.Int("project", 0, "Project id to probe (default 1)")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s test-connection [flags]\n\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "Verify connectivity and authentication against the configured Dradis instance.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	ui.SetNoColor(*noColor)

	cfg, err := config.Load(*configFile)
	if err != nil {
		ui.Errorf("configuration: %v", err)
		os.Exit(1)
	}

	if *projectID <= 0 {
		*projectID, _ = strconv.Atoi(envOrDefault("DRADIS_TEST_PROJECT_ID", "1"))
		if *projectID <= 0 {
			*projectID = 1
		}
	}

	client := dradis.NewClient(cfg.URL, cfg.APIToken, cfg.VulnerabilityFields, dradis.Options{})

	ui.Infof("probing %s (project %d)...", cfg.URL, *projectID)
	details, err := client.GetProjectDetails(context.Background(), *projectID)
	if err != nil {
		var reqErr *dradis.RequestError
		if errors.As(err, &reqErr) {
			// The instance answered, so connectivity and TLS are fine.
			// 401/403 means a bad token, 404 means the probe project is
			// missing but auth worked.
			switch reqErr.Status {
			case 401, 403:
				ui.Errorf("authentication failed (HTTP %d): check %s", reqErr.Status, defaults.EnvAPIToken)
			case 404:
				ui.Successf("connected to %s, but project %d does not exist (try --project)", cfg.URL, *projectID)
				return
			default:
				ui.Errorf("unexpected response: %v", err)
			}
			os.Exit(1)
		}
		ui.Errorf("connection failed: %v", err)
		os.Exit(1)
	}

	ui.Successf("connected to %s", cfg.URL)
	fmt.Printf("  project: %s (id %d)\n", details.Name, details.ID)
	if len(details.Authors) > 0 {
		fmt.Printf("  authors: %d\n", len(details.Authors))
	}
}
