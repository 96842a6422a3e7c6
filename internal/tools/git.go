package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/pkg/runner"
)

var ErrEmptyMessage = errors.New("commit message cannot be empty")

// Committer records the working directory in git: init, stage everything,
// commit. The first failing step stops the sequence.
type Committer struct {
	runner  runner.Runner
	gitPath string
	workdir string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCommitter(r runner.Runner, gitPath, workdir string, timeout time.Duration, logger *zap.Logger) *Committer {
	if gitPath == "" {
		gitPath = "git"
	}
	return &Committer{
		runner:  r,
		gitPath: gitPath,
		workdir: workdir,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *Committer) Commit(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	steps := [][]string{
		{"init"},
		{"add", "."},
		{"commit", "-m", message},
	}

	var combined strings.Builder
	for _, args := range steps {
		startTime := time.Now()
		out, err := c.runner.Run(ctx, runner.Command{
			Name:    c.gitPath,
			Args:    args,
			Dir:     c.workdir,
			Timeout: c.timeout,
		})
		combined.WriteString(out)
		if err != nil {
			c.logger.Warn("git step failed",
				zap.String("step", args[0]),
				zap.String("workdir", c.workdir),
				zap.Error(err))
			return combined.String(), fmt.Errorf("git %s: %w", args[0], err)
		}
		c.logger.Debug("git step completed",
			zap.String("step", args[0]),
			zap.Duration("duration", time.Since(startTime)))
	}
	return combined.String(), nil
}
