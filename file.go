package csvfix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const outputSuffix = "_corrected.csv"

// Result describes a completed FixFile run.
type Result struct {
	Input  string
	Output string
	Stats  Stats
}

// OutputPath derives the corrected file name for input: the extension of the
// last path element, from its final '.', is dropped and "_corrected.csv"
// appended. A path whose last element has no '.' keeps all of its text.
//
// Unlike a plain split at the last '.' of the whole path, a '.' inside a
// directory name is never treated as an extension, so the output always lands
// in the input's directory.
//
//	data.csv    -> data_corrected.csv
//	dir/data    -> dir/data_corrected.csv
//	dir.v1/data -> dir.v1/data_corrected.csv
func OutputPath(input string) string {
	dot := strings.LastIndexByte(input, '.')
	sep := strings.LastIndexAny(input, `/`+string(filepath.Separator))
	if dot > sep {
		input = input[:dot]
	}
	return input + outputSuffix
}

// FixFile fixes the CSV file at input and writes the result to OutputPath(input).
// The output is not created if input cannot be opened. If the run fails after
// the output was created, the partial file is left in place.
func FixFile(input string, opts Options) (res Result, err error) {
	res = Result{Input: input, Output: OutputPath(input)}

	in, err := os.Open(input)
	if err != nil {
		return res, fmt.Errorf("csvfix: open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(res.Output)
	if err != nil {
		return res, fmt.Errorf("csvfix: create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csvfix: close output: %w", cerr)
		}
	}()

	res.Stats, err = Fix(out, in, opts)
	return res, err
}
