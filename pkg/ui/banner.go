// Package ui provides styled terminal output for the dradis-mcp CLI.
// All output goes to stderr so it never corrupts the stdio MCP transport.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// Version information - can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/dradis-tools/dradis-mcp/pkg/ui.Version=1.0.0"
var (
	Version   = defaults.Version
	BuildDate = "dev"
	Commit    = "dev"
)

// UserAgent returns the standard User-Agent string for outbound requests.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", defaults.ToolName, Version)
}

// Global UI state
var (
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const bannerArt = `
       __              ___
  ____/ /________ _____/ (_)____      ____ ___  _________
 / __  / ___/ __ ` + "`" + `/ __  / / ___/_____/ __ ` + "`" + `__ \/ ___/ __ \
/ /_/ / /  / /_/ / /_/ / (__  )_____/ / / / / / /__/ /_/ /
\__,_/_/   \__,_/\__,_/_/____/     /_/ /_/ /_/\___/ .___/
                                                 /_/
`

// PrintBanner prints the application banner with version info to stderr.
func PrintBanner() {
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(os.Stderr, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(os.Stderr, "                     v%s\n\n", VersionStyle.Render(Version))
}

// Successf prints a success message to stderr.
func Successf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", SuccessStyle.Render("[ok]"), fmt.Sprintf(format, args...))
}

// Errorf prints an error message to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[error]"), fmt.Sprintf(format, args...))
}

// Infof prints a muted informational message to stderr.
func Infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", MutedStyle.Render("[info]"), fmt.Sprintf(format, args...))
}
