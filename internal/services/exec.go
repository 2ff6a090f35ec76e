package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// CommandExecutor runs binaries with os/exec, streaming stdout and stderr lines
// to the supplied callback.
type CommandExecutor struct{}

// Run starts the command and blocks until it exits. The last lines of output
// are attached to the returned error so failures remain diagnosable.
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
		return fmt.Errorf("start command: %w", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scanErr error
		once    sync.Once
		tail    []string
	)
	const tailLimit = 8

	forward := func(line string) {
		mu.Lock()
		tail = append(tail, line)
		if len(tail) > tailLimit {
			tail = tail[len(tail)-tailLimit:]
		}
		mu.Unlock()
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
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		mu.Lock()
		detail := strings.TrimSpace(strings.Join(tail, "\n"))
		mu.Unlock()
		if detail != "" {
			return fmt.Errorf("wait command: %w: %s", err, detail)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
