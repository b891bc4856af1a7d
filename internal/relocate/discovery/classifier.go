package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/temirov/mv-git/internal/relocate/shared"
)

// GitDirectoryClassifier detects Git repositories by probing for a direct .git entry.
type GitDirectoryClassifier struct {
	fileSystem shared.FileSystem
}

// NewGitDirectoryClassifier constructs a classifier backed by the provided filesystem.
func NewGitDirectoryClassifier(fileSystem shared.FileSystem) *GitDirectoryClassifier {
	return &GitDirectoryClassifier{fileSystem: fileSystem}
}

// IsGitRepository reports whether directoryPath contains a .git file or directory.
func (classifier *GitDirectoryClassifier) IsGitRepository(directoryPath string) (bool, error) {
	gitMetadataPath := filepath.Join(directoryPath, shared.GitMetadataDirectoryNameConstant)

	_, statError := classifier.fileSystem.Stat(gitMetadataPath)
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, fs.ErrNotExist) {
		return false, nil
	}
	return false, statError
}
