package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	commandStartedMessageTemplateConstant   = "Running %s"
	commandSucceededMessageTemplateConstant = "Completed %s"
	commandFailedMessageTemplateConstant    = "%s failed with exit code %d"
	commandErroredMessageTemplateConstant   = "%s failed: %v"
	commandLabelSeparatorConstant           = " "
	logFieldCommandNameConstant             = "command_name"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
)

// ErrLoggerNotConfigured indicates a ShellExecutor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New("shell executor requires a logger")

// ErrCommandRunnerNotConfigured indicates a ShellExecutor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New("shell executor requires a command runner")

// ShellExecutor runs shell commands while logging lifecycle events.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, commandRunner: commandRunner}, nil
}

// ExecuteGit runs the git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	command := ShellCommand{Name: CommandGit, Details: details}
	return executor.execute(executionContext, command)
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandLabel := formatCommandLabel(command)

	executor.logger.Debug(
		fmt.Sprintf(commandStartedMessageTemplateConstant, commandLabel),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logger.Error(
			fmt.Sprintf(commandErroredMessageTemplateConstant, commandLabel, runError),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
		)
		return ExecutionResult{}, executionFailure
	}

	if executionResult.ExitCode != 0 {
		commandFailure := CommandFailedError{Command: command, Result: executionResult}
		executor.logger.Warn(
			fmt.Sprintf(commandFailedMessageTemplateConstant, commandLabel, executionResult.ExitCode),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		)
		return ExecutionResult{}, commandFailure
	}

	executor.logger.Debug(
		fmt.Sprintf(commandSucceededMessageTemplateConstant, commandLabel),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)

	return executionResult, nil
}

func formatCommandLabel(command ShellCommand) string {
	labelComponents := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(labelComponents, commandLabelSeparatorConstant)
}
