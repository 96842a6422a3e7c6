package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/pkg/runner"
)

var (
	ErrNoBestMove    = errors.New("engine reported no best move")
	ErrEmptyPosition = errors.New("position cannot be empty")
)

type Analysis struct {
	BestMove string
	Ponder   string
	// Score is the engine's last evaluation, e.g. "cp 34" or "mate 3".
	Score string
	Depth int
}

// Analyzer asks a UCI engine for the best move in a FEN position.
type Analyzer struct {
	runner  runner.Runner
	engine  string
	depth   int
	timeout time.Duration
	logger  *zap.Logger
}

func NewAnalyzer(r runner.Runner, engine string, depth int, timeout time.Duration, logger *zap.Logger) *Analyzer {
	if depth <= 0 {
		depth = 12
	}
	return &Analyzer{
		runner:  r,
		engine:  engine,
		depth:   depth,
		timeout: timeout,
		logger:  logger,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, fen string) (Analysis, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return Analysis{}, ErrEmptyPosition
	}

	input := fmt.Sprintf("uci\nposition fen %s\ngo depth %d\n", fen, a.depth)
	startTime := time.Now()
	out, err := a.runner.Run(ctx, runner.Command{
		Name:    a.engine,
		Input:   input,
		Timeout: a.timeout,
		Until:   "bestmove",
	})

	analysis, ok := parseEngineOutput(out)
	if !ok {
		if err != nil {
			return analysis, fmt.Errorf("%w: %v", ErrNoBestMove, err)
		}
		return analysis, ErrNoBestMove
	}

	a.logger.Debug("Engine analysis completed",
		zap.String("best_move", analysis.BestMove),
		zap.String("score", analysis.Score),
		zap.Int("depth", analysis.Depth),
		zap.Duration("duration", time.Since(startTime)))
	return analysis, nil
}

func parseEngineOutput(out string) (Analysis, bool) {
	var analysis Analysis
	found := false
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "info":
			parseInfo(fields[1:], &analysis)
		case "bestmove":
			if len(fields) < 2 || fields[1] == "(none)" {
				continue
			}
			analysis.BestMove = fields[1]
			if len(fields) >= 4 && fields[2] == "ponder" {
				analysis.Ponder = fields[3]
			}
			found = true
		}
	}
	return analysis, found
}

func parseInfo(fields []string, analysis *Analysis) {
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if d, err := strconv.Atoi(fields[i+1]); err == nil {
					analysis.Depth = d
				}
			}
		case "score":
			if i+2 < len(fields) {
				analysis.Score = fields[i+1] + " " + fields[i+2]
			}
		}
	}
}
