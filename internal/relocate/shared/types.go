package shared

import (
	"context"
	"io/fs"
)

const (
	// GitMetadataDirectoryNameConstant identifies the entry marking a directory as a Git repository.
	GitMetadataDirectoryNameConstant = ".git"
	// GitIgnoreFileNameConstant identifies the ignore rule file read from a repository root.
	GitIgnoreFileNameConstant = ".gitignore"
)

// FileSystem exposes filesystem operations required by relocation services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	Rename(oldPath string, newPath string) error
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	CopyFile(sourcePath string, destinationPath string) error
	RemoveAll(path string) error
}

// RepositoryClassifier decides whether a directory is a Git repository.
type RepositoryClassifier interface {
	IsGitRepository(directoryPath string) (bool, error)
}

// IgnoreMatcher reports whether a repository-relative path is excluded by ignore rules.
type IgnoreMatcher interface {
	Matches(relativePath string, isDirectory bool) bool
	Empty() bool
}

// IgnoreRuleLoader loads the ignore rules declared at a repository root.
type IgnoreRuleLoader interface {
	LoadRepositoryRules(repositoryPath string) (IgnoreMatcher, error)
}

// GitRepositoryManager exposes repository-level git operations used before moves.
type GitRepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
}
