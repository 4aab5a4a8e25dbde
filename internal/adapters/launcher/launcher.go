// Package launcher hands URLs and files to programs outside the process.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// URLLauncher implements ports.URLLauncher with the OS opener
type URLLauncher struct {
	goos   string
	run    func(cmd *exec.Cmd) error
	logger *log.Logger
}

// Ensure URLLauncher implements ports.URLLauncher
var _ ports.URLLauncher = (*URLLauncher)(nil)

// New creates a launcher for the running OS
func New(logger *log.Logger) *URLLauncher {
	return &URLLauncher{
		goos:   runtime.GOOS,
		run:    func(cmd *exec.Cmd) error { return cmd.Run() },
		logger: logging.OrDiscard(logger),
	}
}

// LaunchURL opens url with xdg-open, open or start
func (l *URLLauncher) LaunchURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("empty url")
	}

	cmd, err := l.Command(ctx, url)
	if err != nil {
		return err
	}
	l.logger.Debug("launching url", "url", url, "cmd", cmd.Path)
	if err := l.run(cmd); err != nil {
		return fmt.Errorf("launch %s: %w", url, err)
	}
	return nil
}

// Command returns the opener command for url
func (l *URLLauncher) Command(ctx context.Context, url string) (*exec.Cmd, error) {
	switch l.goos {
	case "darwin":
		return exec.CommandContext(ctx, "open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.CommandContext(ctx, "xdg-open", url), nil
	case "windows":
		return exec.CommandContext(ctx, "cmd", "/c", "start", "", url), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", l.goos)
	}
}

// IsSelectURI reports whether url is a collection deep link this module
// produced
func IsSelectURI(url string) bool {
	_, err := domain.ParseSelectURI(url)
	return err == nil
}
