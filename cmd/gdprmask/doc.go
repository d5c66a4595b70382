// Package gdprmask provides the command-line interface for the Gdprmask tool.
// It configures subcommands (anonymize, batch, detectors, audit, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/gdprmask/cmd/gdprmask"
//	func main() { gdprmask.Execute() }
package gdprmask
