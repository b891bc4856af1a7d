package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mv-git/internal/utils"
)

const (
	testStructuredLoggerCaseNameConstant = "structured_logger_emits_json"
	testConsoleLoggerCaseNameConstant    = "console_logger_emits_plain_text"
	testUnknownLogLevelCaseNameConstant  = "unknown_log_level_rejected"
	testUnknownLogFormatCaseNameConstant = "unknown_log_format_rejected"
	testUnknownLogLevelValueConstant     = "verbose"
	testUnknownLogFormatValueConstant    = "pretty"
	testScanLogMessageConstant           = "relocation_scan_event"
	testTimestampFieldNameConstant       = "timestamp"
	testUnsupportedLevelErrorConstant    = "unsupported log level"
	testUnsupportedFormatErrorConstant   = "unsupported log format"
)

func captureLoggerOutput(testInstance *testing.T, requestedLogLevel utils.LogLevel, requestedLogFormat utils.LogFormat) []byte {
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStderr := os.Stderr
	os.Stderr = pipeWriter
	defer func() {
		os.Stderr = originalStderr
	}()

	logger, creationError := utils.NewLoggerFactory().CreateLogger(requestedLogLevel, requestedLogFormat)
	require.NoError(testInstance, creationError)

	logger.Info(testScanLogMessageConstant)
	if syncError := logger.Sync(); syncError != nil {
		require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
	}

	require.NoError(testInstance, pipeWriter.Close())

	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())

	return bytes.TrimSpace(capturedOutput)
}

func TestLoggerFactoryCreateLoggerEncodings(testInstance *testing.T) {
	testInstance.Run(testStructuredLoggerCaseNameConstant, func(testInstance *testing.T) {
		capturedOutput := captureLoggerOutput(testInstance, utils.LogLevelInfo, utils.LogFormatStructured)

		decodedRecord := map[string]any{}
		require.NoError(testInstance, json.Unmarshal(capturedOutput, &decodedRecord))
		require.Contains(testInstance, decodedRecord, testTimestampFieldNameConstant)
		require.Contains(testInstance, string(capturedOutput), testScanLogMessageConstant)
	})

	testInstance.Run(testConsoleLoggerCaseNameConstant, func(testInstance *testing.T) {
		capturedOutput := captureLoggerOutput(testInstance, utils.LogLevelDebug, utils.LogFormatConsole)

		require.False(testInstance, json.Valid(capturedOutput))
		require.Contains(testInstance, string(capturedOutput), testScanLogMessageConstant)
	})
}

func TestLoggerFactoryCreateLoggerValidation(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectedErrorText  string
	}{
		{
			name:               testUnknownLogLevelCaseNameConstant,
			requestedLogLevel:  utils.LogLevel(testUnknownLogLevelValueConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectedErrorText:  testUnsupportedLevelErrorConstant,
		},
		{
			name:               testUnknownLogFormatCaseNameConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testUnknownLogFormatValueConstant),
			expectedErrorText:  testUnsupportedFormatErrorConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			require.Nil(testInstance, logger)
			require.Error(testInstance, creationError)
			require.Contains(testInstance, creationError.Error(), testCase.expectedErrorText)
		})
	}
}
