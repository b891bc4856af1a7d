package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/mv-git/internal/execshell"
	"github.com/temirov/mv-git/internal/gitrepo"
	"github.com/temirov/mv-git/internal/relocate/discovery"
	"github.com/temirov/mv-git/internal/relocate/filesystem"
	"github.com/temirov/mv-git/internal/relocate/ignore"
	"github.com/temirov/mv-git/internal/relocate/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveRepositoryClassifier returns the provided classifier or a .git probe default.
func ResolveRepositoryClassifier(existing shared.RepositoryClassifier, fileSystem shared.FileSystem) shared.RepositoryClassifier {
	if existing != nil {
		return existing
	}
	return discovery.NewGitDirectoryClassifier(ResolveFileSystem(fileSystem))
}

// ResolveIgnoreRuleLoader returns the provided loader or a root .gitignore default.
func ResolveIgnoreRuleLoader(existing shared.IgnoreRuleLoader, fileSystem shared.FileSystem) shared.IgnoreRuleLoader {
	if existing != nil {
		return existing
	}
	return ignore.NewRepositoryRuleLoader(ResolveFileSystem(fileSystem))
}

// ResolveGitRepositoryManager returns the provided manager or a shell-backed default.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, logger *zap.Logger) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	return gitrepo.NewRepositoryManager(shellExecutor)
}
