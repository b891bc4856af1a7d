package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugValueConstant           = "debug"
	logLevelInfoValueConstant            = "info"
	logLevelWarnValueConstant            = "warn"
	logLevelErrorValueConstant           = "error"
	logFormatStructuredValueConstant     = "structured"
	logFormatConsoleValueConstant        = "console"
	structuredEncodingNameConstant       = "json"
	consoleEncodingNameConstant          = "console"
	timestampFieldNameConstant           = "timestamp"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates the logging granularities accepted by relocation runs.
type LogLevel string

// Log levels accepted by CreateLogger.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugValueConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoValueConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnValueConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorValueConstant)
)

// LogFormat enumerates the logger output encodings accepted by relocation runs.
type LogFormat string

// Log formats accepted by CreateLogger.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredValueConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleValueConstant)
)

// LoggerFactory builds zap.Logger instances for relocation runs.
type LoggerFactory struct{}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
//
// Relocation runs emit few events, so sampling is disabled and timestamps use
// ISO 8601 to keep scan records directly readable.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLevel, levelError := resolveZapLevel(requestedLogLevel)
	if levelError != nil {
		return nil, levelError
	}

	encoding, encodingError := resolveZapEncoding(requestedLogFormat)
	if encodingError != nil {
		return nil, encodingError
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLevel)
	configuration.Encoding = encoding
	configuration.Sampling = nil
	configuration.EncoderConfig.TimeKey = timestampFieldNameConstant
	configuration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return configuration.Build()
}

func resolveZapLevel(requestedLogLevel LogLevel) (zapcore.Level, error) {
	switch requestedLogLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}
}

func resolveZapEncoding(requestedLogFormat LogFormat) (string, error) {
	switch requestedLogFormat {
	case LogFormatStructured:
		return structuredEncodingNameConstant, nil
	case LogFormatConsole:
		return consoleEncodingNameConstant, nil
	default:
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}
}
