// Package cli constructs the mv-git command-line interface, wiring the Cobra
// root command, configuration loader, and structured logging primitives. It
// exposes helpers to build reusable application instances and to execute the
// relocation command as a reusable library.
package cli
