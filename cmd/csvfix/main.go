// Command csvfix escapes stray quotes in CSV files.
//
//	csvfix [flags] <path_to_file.csv> [more.csv ...]
//
// Each input is written to a sibling file named by csvfix.OutputPath,
// e.g. data.csv becomes data_corrected.csv.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(stderr, "csvfix: %v\n", err)
		return 1
	}
}
