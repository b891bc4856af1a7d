package relocate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/mv-git/internal/relocate/shared"
	"github.com/temirov/mv-git/internal/relocate/transfer"
)

const (
	planMoveMessageConstant          = "PLAN-MOVE: %s → %s\n"
	planCopyMessageConstant          = "PLAN-COPY: %s → %s\n"
	moveSuccessMessageConstant       = "MOVE-OK: %s → %s\n"
	copySuccessMessageConstant       = "COPY-OK: %s → %s\n"
	skipNotRepositoryMessageConstant = "SKIP (not a git repository): %s\n"
	skipDirtyWorktreeMessageConstant = "SKIP (dirty worktree): %s\n"
	errorTargetExistsMessageConstant = "ERROR: target exists: %s\n"
	errorInspectionMessageTemplate   = "ERROR: could not inspect %s: %v\n"
	errorTransferMessageTemplate     = "ERROR: transfer failed for %s: %v\n"
	sourceErrorTemplateConstant      = "%w: %s"
	destinationPermissionConstant    = fs.FileMode(0o755)
	scanStartedMessageConstant       = "repository scan started"
	scanCompletedMessageConstant     = "repository scan completed"
	entrySkippedNotDirectoryMessage  = "skipping non-directory child"
	logFieldSourceConstant           = "source"
	logFieldDestinationConstant      = "destination"
	logFieldCopyModeConstant         = "copy_mode"
	logFieldDryRunConstant           = "dry_run"
	logFieldChildNameConstant        = "child_name"
	logFieldMovedConstant            = "moved"
	logFieldCopiedConstant           = "copied"
	logFieldSkippedConstant          = "skipped"
	logFieldFailedConstant           = "failed"
)

// ErrSourceNotFound indicates the source directory does not exist.
var ErrSourceNotFound = errors.New("source directory not found")

// ErrSourceNotDirectory indicates the source path exists but is not a directory.
var ErrSourceNotDirectory = errors.New("source path is not a directory")

// Options configures a relocation run.
type Options struct {
	SourcePath           string
	DestinationPath      string
	CopyMode             bool
	DryRun               bool
	RequireCleanWorktree bool
}

// Dependencies supplies collaborators required to relocate repositories.
type Dependencies struct {
	FileSystem shared.FileSystem
	Classifier shared.RepositoryClassifier
	RuleLoader shared.IgnoreRuleLoader
	GitManager shared.GitRepositoryManager
	Logger     *zap.Logger
	Output     io.Writer
	Errors     io.Writer
}

// Summary counts the per-child outcomes of a relocation run.
type Summary struct {
	Moved   int
	Copied  int
	Skipped int
	Failed  int
}

// Service orchestrates classification and transfer of repositories.
type Service struct {
	dependencies Dependencies
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) *Service {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies}
}

// Relocate scans the source directory and transfers matched repositories.
//
// Per-child failures are reported to the error writer and counted in the
// Summary without aborting the run. Missing or non-directory sources abort
// with ErrSourceNotFound or ErrSourceNotDirectory.
func (service *Service) Relocate(executionContext context.Context, options Options) (Summary, error) {
	summary := Summary{}

	absoluteSourcePath, sourcePathError := service.dependencies.FileSystem.Abs(options.SourcePath)
	if sourcePathError != nil {
		return summary, sourcePathError
	}
	options.SourcePath = absoluteSourcePath

	absoluteDestinationPath, destinationPathError := service.dependencies.FileSystem.Abs(options.DestinationPath)
	if destinationPathError != nil {
		return summary, destinationPathError
	}
	options.DestinationPath = absoluteDestinationPath

	sourceInformation, sourceStatError := service.dependencies.FileSystem.Stat(options.SourcePath)
	if sourceStatError != nil {
		if errors.Is(sourceStatError, fs.ErrNotExist) {
			return summary, fmt.Errorf(sourceErrorTemplateConstant, ErrSourceNotFound, options.SourcePath)
		}
		return summary, sourceStatError
	}
	if !sourceInformation.IsDir() {
		return summary, fmt.Errorf(sourceErrorTemplateConstant, ErrSourceNotDirectory, options.SourcePath)
	}

	service.dependencies.Logger.Info(
		scanStartedMessageConstant,
		zap.String(logFieldSourceConstant, options.SourcePath),
		zap.String(logFieldDestinationConstant, options.DestinationPath),
		zap.Bool(logFieldCopyModeConstant, options.CopyMode),
		zap.Bool(logFieldDryRunConstant, options.DryRun),
	)

	if !options.DryRun {
		if creationError := service.dependencies.FileSystem.MkdirAll(options.DestinationPath, destinationPermissionConstant); creationError != nil {
			return summary, creationError
		}
	}

	directoryEntries, readError := service.dependencies.FileSystem.ReadDir(options.SourcePath)
	if readError != nil {
		return summary, readError
	}

	for _, directoryEntry := range directoryEntries {
		service.relocateChild(executionContext, options, directoryEntry.Name(), directoryEntry.IsDir(), &summary)
	}

	service.dependencies.Logger.Info(
		scanCompletedMessageConstant,
		zap.Int(logFieldMovedConstant, summary.Moved),
		zap.Int(logFieldCopiedConstant, summary.Copied),
		zap.Int(logFieldSkippedConstant, summary.Skipped),
		zap.Int(logFieldFailedConstant, summary.Failed),
	)

	return summary, nil
}

// Relocate runs a relocation using transient service state.
func Relocate(executionContext context.Context, dependencies Dependencies, options Options) (Summary, error) {
	return NewService(dependencies).Relocate(executionContext, options)
}

func (service *Service) relocateChild(executionContext context.Context, options Options, childName string, isDirectory bool, summary *Summary) {
	childPath := filepath.Join(options.SourcePath, childName)

	if !isDirectory {
		service.dependencies.Logger.Debug(
			entrySkippedNotDirectoryMessage,
			zap.String(logFieldChildNameConstant, childName),
		)
		summary.Skipped++
		return
	}

	isRepository, classificationError := service.dependencies.Classifier.IsGitRepository(childPath)
	if classificationError != nil {
		service.printfError(errorInspectionMessageTemplate, childPath, classificationError)
		summary.Failed++
		return
	}
	if !isRepository {
		service.printfOutput(skipNotRepositoryMessageConstant, childPath)
		summary.Skipped++
		return
	}

	ignoreRules, ruleLoadError := service.dependencies.RuleLoader.LoadRepositoryRules(childPath)
	if ruleLoadError != nil {
		service.printfError(errorInspectionMessageTemplate, childPath, ruleLoadError)
		summary.Failed++
		return
	}

	if options.RequireCleanWorktree && !options.CopyMode && !service.worktreeClean(executionContext, childPath) {
		service.printfOutput(skipDirtyWorktreeMessageConstant, childPath)
		summary.Skipped++
		return
	}

	destinationPath := filepath.Join(options.DestinationPath, childName)

	if options.DryRun {
		if options.CopyMode {
			service.printfOutput(planCopyMessageConstant, childPath, destinationPath)
			summary.Copied++
		} else {
			service.printfOutput(planMoveMessageConstant, childPath, destinationPath)
			summary.Moved++
		}
		return
	}

	if _, destinationStatError := service.dependencies.FileSystem.Stat(destinationPath); destinationStatError == nil {
		service.printfError(errorTargetExistsMessageConstant, destinationPath)
		summary.Failed++
		return
	}

	transferDependencies := transfer.Dependencies{
		FileSystem:  service.dependencies.FileSystem,
		IgnoreRules: ignoreRules,
	}
	transferOptions := transfer.Options{
		RepositoryPath:  childPath,
		DestinationPath: destinationPath,
		CopyMode:        options.CopyMode,
	}

	if transferError := transfer.Transfer(executionContext, transferDependencies, transferOptions); transferError != nil {
		service.printfError(errorTransferMessageTemplate, childPath, transferError)
		summary.Failed++
		return
	}

	if options.CopyMode {
		service.printfOutput(copySuccessMessageConstant, childPath, destinationPath)
		summary.Copied++
	} else {
		service.printfOutput(moveSuccessMessageConstant, childPath, destinationPath)
		summary.Moved++
	}
}

func (service *Service) worktreeClean(executionContext context.Context, repositoryPath string) bool {
	if service.dependencies.GitManager == nil {
		return false
	}

	clean, cleanlinessError := service.dependencies.GitManager.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanlinessError != nil {
		return false
	}
	return clean
}

func (service *Service) printfOutput(format string, arguments ...any) {
	if service.dependencies.Output == nil {
		return
	}
	fmt.Fprintf(service.dependencies.Output, format, arguments...)
}

func (service *Service) printfError(format string, arguments ...any) {
	if service.dependencies.Errors == nil {
		return
	}
	fmt.Fprintf(service.dependencies.Errors, format, arguments...)
}
