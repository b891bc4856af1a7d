// Package relocate implements the repository relocation service.
//
// The Service scans the immediate children of a source directory, classifies
// each child as a Git repository by probing for a .git entry, and moves or
// copies matched repositories into a destination directory while honoring the
// repository's root .gitignore rules during filtered copies.
package relocate
