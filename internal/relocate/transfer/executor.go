package transfer

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/temirov/mv-git/internal/relocate/shared"
)

const (
	createdDirectoryPermissionConstant = fs.FileMode(0o755)
)

// Options configures a single repository transfer.
type Options struct {
	RepositoryPath  string
	DestinationPath string
	CopyMode        bool
}

// Dependencies supplies collaborators required to execute transfers.
type Dependencies struct {
	FileSystem  shared.FileSystem
	IgnoreRules shared.IgnoreMatcher
}

// Executor moves or copies a repository tree while honoring ignore rules.
type Executor struct {
	dependencies Dependencies
}

// NewExecutor constructs an Executor from the provided dependencies.
func NewExecutor(dependencies Dependencies) *Executor {
	return &Executor{dependencies: dependencies}
}

// Transfer relocates the repository according to the options.
//
// Moves attempt an atomic rename when no ignore rules apply; otherwise the
// tree is copied with ignored entries skipped and the source removed
// afterwards. Copies never mutate the source.
func (executor *Executor) Transfer(executionContext context.Context, options Options) error {
	if !options.CopyMode && executor.ignoreRulesEmpty() {
		if renameError := executor.dependencies.FileSystem.Rename(options.RepositoryPath, options.DestinationPath); renameError == nil {
			return nil
		}
		// Rename can fail across devices or when the destination parent
		// disallows it; the filtered copy path below handles both.
	}

	if copyError := executor.copyTree(executionContext, options.RepositoryPath, options.DestinationPath, ""); copyError != nil {
		return copyError
	}

	if options.CopyMode {
		return nil
	}

	return executor.dependencies.FileSystem.RemoveAll(options.RepositoryPath)
}

// Transfer relocates a repository using transient executor state.
func Transfer(executionContext context.Context, dependencies Dependencies, options Options) error {
	return NewExecutor(dependencies).Transfer(executionContext, options)
}

func (executor *Executor) copyTree(executionContext context.Context, sourcePath string, destinationPath string, relativePrefix string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	if creationError := executor.dependencies.FileSystem.MkdirAll(destinationPath, createdDirectoryPermissionConstant); creationError != nil {
		return creationError
	}

	directoryEntries, readError := executor.dependencies.FileSystem.ReadDir(sourcePath)
	if readError != nil {
		return readError
	}

	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		entryRelativePath := filepath.ToSlash(filepath.Join(relativePrefix, entryName))

		if executor.entryIgnored(entryRelativePath, directoryEntry.IsDir()) {
			continue
		}

		entrySourcePath := filepath.Join(sourcePath, entryName)
		entryDestinationPath := filepath.Join(destinationPath, entryName)

		if directoryEntry.IsDir() {
			if descendError := executor.copyTree(executionContext, entrySourcePath, entryDestinationPath, entryRelativePath); descendError != nil {
				return descendError
			}
			continue
		}

		if copyError := executor.dependencies.FileSystem.CopyFile(entrySourcePath, entryDestinationPath); copyError != nil {
			return copyError
		}
	}

	return nil
}

func (executor *Executor) entryIgnored(relativePath string, isDirectory bool) bool {
	if executor.dependencies.IgnoreRules == nil {
		return false
	}
	return executor.dependencies.IgnoreRules.Matches(relativePath, isDirectory)
}

func (executor *Executor) ignoreRulesEmpty() bool {
	if executor.dependencies.IgnoreRules == nil {
		return true
	}
	return executor.dependencies.IgnoreRules.Empty()
}
