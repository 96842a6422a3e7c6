package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is returned, together with whatever output was collected, when a
// command outlives its timeout.
var ErrTimeout = errors.New("command timed out")

type Command struct {
	Name    string
	Args    []string
	Dir     string
	Input   string
	Timeout time.Duration
	// Until stops the command as soon as an output line starts with it.
	Until string
}

type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs local binaries with os/exec. Stdout and stderr are merged.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	externalCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	externalCmd.Dir = cmd.Dir
	externalCmd.WaitDelay = time.Second

	pr, pw := io.Pipe()
	externalCmd.Stdout = pw
	externalCmd.Stderr = pw

	stdin, err := externalCmd.StdinPipe()
	if err != nil {
		return "", err
	}

	if err := externalCmd.Start(); err != nil {
		return "", fmt.Errorf("%s: %w", cmd.Name, err)
	}

	out := &output{}
	found := make(chan struct{})
	scanned := make(chan struct{})
	go func() {
		defer close(scanned)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		signalled := false
		for scanner.Scan() {
			line := scanner.Text()
			out.add(line)
			if !signalled && cmd.Until != "" && strings.HasPrefix(line, cmd.Until) {
				signalled = true
				close(found)
			}
		}
		_, _ = io.Copy(io.Discard, pr)
	}()

	go func() {
		_, _ = io.WriteString(stdin, cmd.Input)
		// interactive programs quit on EOF, so stdin stays open until Until is seen
		if cmd.Until == "" {
			_ = stdin.Close()
		}
	}()

	done := make(chan error, 1)
	go func() {
		err := externalCmd.Wait()
		_ = pw.Close()
		done <- err
	}()

	select {
	case <-found:
		_ = stdin.Close()
		_ = externalCmd.Process.Kill()
		<-done
		<-scanned
		return out.String(), nil
	case err := <-done:
		<-scanned
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out.String(), ErrTimeout
		}
		if ctx.Err() != nil {
			return out.String(), ctx.Err()
		}
		if err != nil {
			return out.String(), fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return out.String(), nil
	}
}

type output struct {
	mu sync.Mutex
	b  strings.Builder
}

func (o *output) add(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.b.WriteString(line)
	o.b.WriteByte('\n')
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.b.String()
}
