package csvfix

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
var ErrInvalidUTF8 = encoding.ErrInvalidUTF8

// Options configures a fix run.
type Options struct {
	// Comma is the field delimiter for both input and output. Default is ','.
	Comma byte
	// Quote is the quote character for both input and output. Default is '"'.
	Quote byte
	// UseCRLF terminates output records with \r\n.
	UseCRLF bool
	// AlwaysQuote quotes every output field.
	AlwaysQuote bool
	// Strict rejects bare quotes and records whose width differs from the
	// first record. By default input is read leniently.
	Strict bool
	// Logger receives per-run diagnostics. The zero value discards them.
	Logger zerolog.Logger
}

// Stats summarises a fix run.
type Stats struct {
	Records     int
	Fields      int
	FixedFields int
	QuotesAdded int
}

// Fix streams CSV records from src to dst, escaping interior quotes in every
// field. Records are handled one at a time, in input order. On error, data
// already written to dst stays there.
func Fix(dst io.Writer, src io.Reader, opts Options) (Stats, error) {
	var stats Stats
	log := opts.Logger

	r := NewReader(transform.NewReader(src, encoding.UTF8Validator))
	r.ReuseRecord = true
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	if opts.Quote != 0 {
		r.Quote = opts.Quote
	}
	if opts.Strict {
		r.FieldsPerRecord = 0
	} else {
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
	}

	w := NewWriter(dst)
	w.Comma = r.Comma
	w.Quote = r.Quote
	w.UseCRLF = opts.UseCRLF
	w.AlwaysQuote = opts.AlwaysQuote

	fixer := QuoteFixer{Quote: r.Quote}
	var fixed []string

	for {
		line := r.Line()
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("csvfix: record %d: %w", stats.Records+1, err)
		}

		fixed = fixer.FixRecord(fixed, record)
		for i := range fixed {
			if added := len(fixed[i]) - len(record[i]); added > 0 {
				stats.FixedFields++
				stats.QuotesAdded += added
				log.Trace().
					Int("record", stats.Records+1).
					Int("line", line).
					Int("field", i+1).
					Int("quotes_added", added).
					Msg("escaped interior quotes")
			}
		}

		if err := w.Write(fixed); err != nil {
			return stats, fmt.Errorf("csvfix: write record %d: %w", stats.Records+1, err)
		}
		stats.Records++
		stats.Fields += len(fixed)
	}

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("csvfix: flush: %w", err)
	}

	log.Debug().
		Int("records", stats.Records).
		Int("fields", stats.Fields).
		Int("fixed_fields", stats.FixedFields).
		Int("quotes_added", stats.QuotesAdded).
		Msg("fix complete")
	return stats, nil
}
