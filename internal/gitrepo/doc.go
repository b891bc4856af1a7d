// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RepositoryManager for inspecting worktree status through
// structured Git command execution.
package gitrepo
