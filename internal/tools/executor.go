package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"sync"

	"github.com/oloynet/tinals-player/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// CommandExecutor runs binaries with os/exec.
type CommandExecutor struct{}

// Run starts binary, forwards every stdout and stderr line to onOutput, and
// waits for it to exit.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		if isNotFound(err) {
			return services.Wrap(services.ErrToolMissing, "tools", "start", binary, err)
		}
		return services.Wrap(services.ErrExternalTool, "tools", "start", binary, err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scanErr error
		once    sync.Once
	)
	tail := newTail(5)

	forward := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		tail.add(line)
		if onOutput != nil {
			onOutput(line)
		}
	}
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return services.Wrap(services.ErrExternalTool, "tools", "scan output", binary, scanErr)
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "tools", "run", tail.detail(binary), err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

// tail keeps the last few output lines for error messages.
type tail struct {
	limit int
	lines []string
}

func newTail(limit int) *tail {
	return &tail{limit: limit}
}

func (t *tail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *tail) detail(binary string) string {
	if len(t.lines) == 0 {
		return binary
	}
	return binary + " (" + strings.Join(t.lines, " | ") + ")"
}
