package transfer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mv-git/internal/relocate/filesystem"
	"github.com/temirov/mv-git/internal/relocate/ignore"
	"github.com/temirov/mv-git/internal/relocate/transfer"
)

const (
	testRepositoryNameConstant        = "project"
	testTrackedFileNameConstant       = "main.go"
	testTrackedFileContentConstant    = "package main\n"
	testIgnoredFileNameConstant       = "debug.log"
	testIgnoredDirectoryNameConstant  = "target"
	testNestedFileNameConstant        = "artifact.bin"
	testIgnoreRuleContentConstant     = "*.log\ntarget/\n"
	testFilePermissionsConstant       = 0o644
	testDirectoryPermissionsConstant  = 0o755
	testMoveWithRulesCaseNameConstant = "move_with_ignore_rules"
	testMoveWithoutRulesCaseName      = "move_without_ignore_rules"
	testCopyWithRulesCaseNameConstant = "copy_with_ignore_rules"
)

func prepareRepositoryFixture(testInstance *testing.T, parentDirectory string) string {
	repositoryPath := filepath.Join(parentDirectory, testRepositoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, testIgnoredDirectoryNameConstant), testDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, testTrackedFileNameConstant), []byte(testTrackedFileContentConstant), testFilePermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, testIgnoredFileNameConstant), []byte(testTrackedFileContentConstant), testFilePermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, testIgnoredDirectoryNameConstant, testNestedFileNameConstant), []byte(testTrackedFileContentConstant), testFilePermissionsConstant))
	return repositoryPath
}

func TestExecutorTransfer(testInstance *testing.T) {
	testCases := []struct {
		name                string
		copyMode            bool
		ignoreRuleContent   string
		expectSourcePresent bool
		expectIgnoredCopied bool
	}{
		{
			name:                testMoveWithRulesCaseNameConstant,
			copyMode:            false,
			ignoreRuleContent:   testIgnoreRuleContentConstant,
			expectSourcePresent: false,
			expectIgnoredCopied: false,
		},
		{
			name:                testMoveWithoutRulesCaseName,
			copyMode:            false,
			ignoreRuleContent:   "",
			expectSourcePresent: false,
			expectIgnoredCopied: true,
		},
		{
			name:                testCopyWithRulesCaseNameConstant,
			copyMode:            true,
			ignoreRuleContent:   testIgnoreRuleContentConstant,
			expectSourcePresent: true,
			expectIgnoredCopied: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sourceParentDirectory := testInstance.TempDir()
			destinationParentDirectory := testInstance.TempDir()

			repositoryPath := prepareRepositoryFixture(testInstance, sourceParentDirectory)
			destinationPath := filepath.Join(destinationParentDirectory, testRepositoryNameConstant)

			transferDependencies := transfer.Dependencies{
				FileSystem:  filesystem.OSFileSystem{},
				IgnoreRules: ignore.CompileRuleSet(testCase.ignoreRuleContent),
			}
			transferOptions := transfer.Options{
				RepositoryPath:  repositoryPath,
				DestinationPath: destinationPath,
				CopyMode:        testCase.copyMode,
			}

			transferError := transfer.Transfer(context.Background(), transferDependencies, transferOptions)
			require.NoError(testInstance, transferError)

			require.FileExists(testInstance, filepath.Join(destinationPath, testTrackedFileNameConstant))

			if testCase.expectIgnoredCopied {
				require.FileExists(testInstance, filepath.Join(destinationPath, testIgnoredFileNameConstant))
				require.DirExists(testInstance, filepath.Join(destinationPath, testIgnoredDirectoryNameConstant))
			} else {
				require.NoFileExists(testInstance, filepath.Join(destinationPath, testIgnoredFileNameConstant))
				require.NoDirExists(testInstance, filepath.Join(destinationPath, testIgnoredDirectoryNameConstant))
			}

			if testCase.expectSourcePresent {
				require.DirExists(testInstance, repositoryPath)
				require.FileExists(testInstance, filepath.Join(repositoryPath, testIgnoredFileNameConstant))
			} else {
				require.NoDirExists(testInstance, repositoryPath)
			}
		})
	}
}

func TestExecutorTransferHonorsContextCancellation(testInstance *testing.T) {
	sourceParentDirectory := testInstance.TempDir()
	destinationParentDirectory := testInstance.TempDir()

	repositoryPath := prepareRepositoryFixture(testInstance, sourceParentDirectory)
	destinationPath := filepath.Join(destinationParentDirectory, testRepositoryNameConstant)

	cancelledContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	transferDependencies := transfer.Dependencies{
		FileSystem:  filesystem.OSFileSystem{},
		IgnoreRules: ignore.CompileRuleSet(testIgnoreRuleContentConstant),
	}
	transferOptions := transfer.Options{
		RepositoryPath:  repositoryPath,
		DestinationPath: destinationPath,
	}

	transferError := transfer.Transfer(cancelledContext, transferDependencies, transferOptions)
	require.ErrorIs(testInstance, transferError, context.Canceled)
	require.DirExists(testInstance, repositoryPath)
}
