package codeeval

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-xmd/internal/process"
)

// ErrLaunch indicates the evaluator process could not be started.
var ErrLaunch = errors.New("could not launch evaluator")

// Launcher runs a local evaluator service for the duration of a
// compilation. The process is started in its own group and the whole group
// is killed on Close.
type Launcher struct {
	argv []string
	log  *zap.SugaredLogger

	mu     sync.Mutex
	cmd    *exec.Cmd
	output bytes.Buffer
	done   chan struct{}
}

// NewLauncher creates a launcher for argv (program first).
func NewLauncher(argv []string, log *zap.SugaredLogger) *Launcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Launcher{argv: argv, log: log}
}

// Start launches the service and waits until client answers its ping.
func (l *Launcher) Start(ctx context.Context, client *Client) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.argv) == 0 {
		return fmt.Errorf("%w: empty command", ErrLaunch)
	}
	if l.cmd != nil {
		return nil
	}

	cmd := exec.Command(l.argv[0], l.argv[1:]...) // #nosec G204 -- command comes from user configuration
	cmd.Stdout = &l.output
	cmd.Stderr = &l.output
	process.SetProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	l.cmd = cmd
	l.done = make(chan struct{})
	go func(done chan struct{}) {
		_ = cmd.Wait()
		close(done)
	}(l.done)

	l.log.Infow("evaluator launched", "command", l.argv[0], "pid", cmd.Process.Pid)

	if err := client.WaitReady(ctx); err != nil {
		l.stopLocked()
		return err
	}
	return nil
}

// Close kills the process group and returns whatever the service printed.
func (l *Launcher) Close() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *Launcher) stopLocked() string {
	if l.cmd == nil {
		return ""
	}
	process.KillProcessGroup(l.cmd.Process.Pid)
	<-l.done
	l.cmd = nil
	l.log.Debugw("evaluator stopped")
	return l.output.String()
}
