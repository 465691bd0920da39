// Package config loads the optional reboot-to configuration file.
//
// The file is named by the --config flag or the REBOOT_TO_CONFIG environment
// variable. There is no automatic discovery: without either, the built-in
// defaults apply. The tool never writes the file.
//
// This package keeps its own package logger, set once by the CLI.
package config
