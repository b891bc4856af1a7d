package ignore

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/temirov/mv-git/internal/relocate/shared"
)

const (
	ignoreLineSeparatorConstant = "\n"
	directorySuffixConstant     = "/"
	commentPrefixConstant       = "#"
	carriageReturnConstant      = "\r"
)

// RuleSet holds the compiled ignore rules declared at a repository root.
type RuleSet struct {
	matcher      *gitignore.GitIgnore
	patternCount int
}

// RepositoryRuleLoader loads RuleSet values from repository .gitignore files.
type RepositoryRuleLoader struct {
	fileSystem shared.FileSystem
}

// NewRepositoryRuleLoader constructs a loader backed by the provided filesystem.
func NewRepositoryRuleLoader(fileSystem shared.FileSystem) *RepositoryRuleLoader {
	return &RepositoryRuleLoader{fileSystem: fileSystem}
}

// LoadRepositoryRules compiles the root .gitignore of repositoryPath into a matcher.
//
// A missing .gitignore yields an empty rule set that matches nothing. Only the
// repository root file is consulted; nested .gitignore files carry no
// precedence in this tool.
func (loader *RepositoryRuleLoader) LoadRepositoryRules(repositoryPath string) (shared.IgnoreMatcher, error) {
	ignoreFilePath := filepath.Join(repositoryPath, shared.GitIgnoreFileNameConstant)

	ignoreFileContent, readError := loader.fileSystem.ReadFile(ignoreFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return &RuleSet{}, nil
		}
		return nil, readError
	}

	return CompileRuleSet(string(ignoreFileContent)), nil
}

// CompileRuleSet parses gitignore-style content into a RuleSet.
func CompileRuleSet(content string) *RuleSet {
	rawLines := strings.Split(content, ignoreLineSeparatorConstant)
	patternLines := make([]string, 0, len(rawLines))
	for _, rawLine := range rawLines {
		patternLine := strings.TrimSpace(strings.TrimSuffix(rawLine, carriageReturnConstant))
		if len(patternLine) == 0 {
			continue
		}
		if strings.HasPrefix(patternLine, commentPrefixConstant) {
			continue
		}
		patternLines = append(patternLines, patternLine)
	}

	if len(patternLines) == 0 {
		return &RuleSet{}
	}

	return &RuleSet{
		matcher:      gitignore.CompileIgnoreLines(patternLines...),
		patternCount: len(patternLines),
	}
}

// Matches reports whether the repository-relative path is excluded by the rule set.
func (ruleSet *RuleSet) Matches(relativePath string, isDirectory bool) bool {
	if ruleSet == nil || ruleSet.matcher == nil {
		return false
	}

	normalizedPath := filepath.ToSlash(relativePath)
	if ruleSet.matcher.MatchesPath(normalizedPath) {
		return true
	}
	if isDirectory && ruleSet.matcher.MatchesPath(normalizedPath+directorySuffixConstant) {
		return true
	}
	return false
}

// Empty reports whether the rule set contains no patterns.
func (ruleSet *RuleSet) Empty() bool {
	return ruleSet == nil || ruleSet.patternCount == 0
}
