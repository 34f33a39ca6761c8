// Package clipboard is the write-only system clipboard boundary. Writes
// are best effort; callers log failures and carry on.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"sync"
)

// ErrUnavailable is returned when no clipboard tool can be found.
var ErrUnavailable = errors.New("no clipboard utility available")

// Clipboard writes text for the user to paste elsewhere.
type Clipboard interface {
	Write(text string) error
}

// Memory is an in-process clipboard used in tests and headless runs.
type Memory struct {
	mu   sync.Mutex
	last string
	// Err, when set, is returned from every Write.
	Err error
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.last = text
	return nil
}

// Last returns the most recently written text.
func (m *Memory) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// System shells out to the platform clipboard tool.
type System struct{}

func (System) Write(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else {
			return ErrUnavailable
		}
	default:
		return ErrUnavailable
	}

	in, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	if _, err := in.Write([]byte(text)); err != nil {
		in.Close()
		cmd.Wait()
		return err
	}
	in.Close()
	return cmd.Wait()
}
