// Package logging builds the application's zap logger. The terminal belongs
// to the UI, so records go to a rotated file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls level, encoding and rotation.
type Config struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // console or json
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size_mb"`
	MaxDays    int    `yaml:"max_days"`
	MaxBackups int    `yaml:"max_backups"`
}

// New builds a logger from cfg. An empty Filename discards output.
func New(cfg Config) (*zap.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	encoder, err := cfg.encoder()
	if err != nil {
		return nil, err
	}
	syncer, err := cfg.syncer()
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(encoder, syncer, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func (c Config) level() (zap.AtomicLevel, error) {
	if c.Level == "" {
		return zap.NewAtomicLevelAt(zap.InfoLevel), nil
	}
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

func (c Config) encoder() (zapcore.Encoder, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000 -0700")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	switch c.Format {
	case "", "console":
		return zapcore.NewConsoleEncoder(encCfg), nil
	case "json":
		return zapcore.NewJSONEncoder(encCfg), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", c.Format)
	}
}

func (c Config) syncer() (zapcore.WriteSyncer, error) {
	if c.Filename == "" {
		return zapcore.AddSync(discard{}), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Filename), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   c.Filename,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxDays,
		MaxBackups: c.MaxBackups,
		LocalTime:  true,
	}), nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
