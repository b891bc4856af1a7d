package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/mv-git/internal/execshell"
)

const (
	gitStatusSubcommandConstant    = "status"
	gitStatusPorcelainFlagConstant = "--porcelain"
)

// ErrGitExecutorNotConfigured indicates a RepositoryManager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New("repository manager requires a git executor")

// GitExecutor exposes the subset of shell execution used by repository inspection.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-level git operations through a GitExecutor.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager validates dependencies and constructs a RepositoryManager.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// CheckCleanWorktree reports whether the repository at repositoryPath has no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return false, executionError
	}

	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}
