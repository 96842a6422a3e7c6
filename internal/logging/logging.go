package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production logger and returns its level handle so the level
// can be changed once configuration is loaded.
func New(level string) (*zap.Logger, zap.AtomicLevel, error) {
	cfg := zap.NewProductionConfig()
	SetLevel(cfg.Level, level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, cfg.Level, err
	}
	return logger, cfg.Level, nil
}

// SetLevel ignores levels zap does not know.
func SetLevel(atom zap.AtomicLevel, level string) {
	if level == "" {
		return
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return
	}
	atom.SetLevel(l)
}
