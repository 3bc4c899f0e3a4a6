package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// EnableColorOutput reports whether stream is a terminal
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// Logger builds the console logger: info and debug go to stdout, errors to
// stderr, nothing at all for level "none"
func (conf *LoggingConfig) Logger() *zap.Logger {
	return conf.logger(os.Stdout, os.Stderr)
}

func (conf *LoggingConfig) logger(stdout, stderr *os.File) *zap.Logger {
	var minLevel zapcore.Level
	switch conf.Level {
	case "debug":
		minLevel = zapcore.DebugLevel
	case "normal":
		minLevel = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	low := zapcore.NewCore(consoleEncoder(stdout), zapcore.Lock(stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return minLevel <= lvl && lvl < zapcore.ErrorLevel
		}))
	high := zapcore.NewCore(consoleEncoder(stderr), zapcore.Lock(stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))

	return zap.New(zapcore.NewTee(high, low)).Named("zoom")
}

func consoleEncoder(stream *os.File) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}
