package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// SystemBrowser opens URLs in the user's default web browser. It supports
// Linux, macOS, and Windows.
type SystemBrowser struct{}

// OpenURL launches the browser without waiting for it to complete.
func (SystemBrowser) OpenURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// Ensure SystemBrowser implements BrowserOpener at compile time.
var _ BrowserOpener = SystemBrowser{}
