package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitConfigError  = 3
	ExitSourceError  = 4
	ExitStorageError = 5
	// ExitHalted means the consecutive-failure breaker tripped and the run
	// stopped before dispatching every task.
	ExitHalted = 6
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "fetch":
		return runFetch(cmdArgs)
	case "inspect":
		return runInspect(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: exceldl <command> [options]

Commands:
  fetch    Download every URL in the spreadsheet's URL column
  inspect  Show the spreadsheet's columns and how many URLs would be fetched

Run 'exceldl <command> -h' for command-specific help.`)
}
