package system

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/zoro11031/hosts-editor/internal/common"
)

// Opener hands URLs to the desktop's default handler.
type Opener struct {
	runner CommandRunner
	goos   string
}

// NewOpener creates an Opener for the running platform.
func NewOpener(runner CommandRunner) *Opener {
	return &Opener{runner: runner, goos: runtime.GOOS}
}

// OpenCommand returns the command used to open url on goos.
func OpenCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// Open validates url and launches the platform opener.
func (o *Opener) Open(ctx context.Context, url string) error {
	if err := common.ValidateURL(url); err != nil {
		return err
	}

	name, args := OpenCommand(o.goos, url)
	if output, err := o.runner.Run(ctx, name, args...); err != nil {
		out := strings.TrimSpace(output)
		if out != "" {
			return fmt.Errorf("failed to open %s: %w\nOutput: %s", url, err, out)
		}
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
