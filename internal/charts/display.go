package charts

import (
	"fmt"
	"os/exec"
	"runtime"
)

func viewerCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// launch starts cmd without blocking and reaps it in the background. done closes once the
// process has exited and been waited on.
func launch(cmd *exec.Cmd) (done <-chan struct{}, err error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	ch := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(ch)
	}()
	return ch, nil
}

// opener launches the platform image viewer for path; swapped in tests.
var opener = func(path string) error {
	_, err := launch(viewerCommand(path))
	return err
}

// Show opens every path with the system viewer. The first failure stops the loop.
func Show(paths []string) error {
	for _, p := range paths {
		if err := opener(p); err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
	}
	return nil
}
