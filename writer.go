package csvfix

import (
	"bufio"
	"io"
	"strings"
)

// Writer serializes records with minimal quoting: a field is quoted only when
// it holds the delimiter, the quote character or a line break.
type Writer struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// UseCRLF terminates records with \r\n instead of \n.
	UseCRLF bool
	// AlwaysQuote quotes every field, not only those that need it.
	AlwaysQuote bool

	bw *bufio.Writer
	// specials holds the bytes forcing a quote for the cached comma and quote.
	specials string
	err      error
}

// NewWriter returns a Writer buffering output to w. It panics if w is nil.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic("csvfix: writer destination cannot be nil")
	}
	return &Writer{
		Comma: ',',
		Quote: '"',
		bw:    bufio.NewWriterSize(w, defaultBufferSize),
	}
}

// Write emits one record followed by the line terminator. A record with no
// fields is written as a blank line. A record holding a single empty field is
// written as an empty quoted field, so readers that skip blank lines still see
// the row. The first error is sticky.
func (w *Writer) Write(record []string) error {
	if w.err != nil {
		return w.err
	}
	comma, quote := w.delimiters()

	if len(record) == 1 && record[0] == "" {
		w.writeByte(quote)
		w.writeByte(quote)
	} else {
		for i, field := range record {
			if i > 0 {
				w.writeByte(comma)
			}
			w.writeField(field, quote)
		}
	}

	if w.UseCRLF {
		w.writeString("\r\n")
	} else {
		w.writeByte('\n')
	}
	return w.err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.bw.Flush()
	}
	return w.err
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) delimiters() (comma, quote byte) {
	comma, quote = w.Comma, w.Quote
	if comma == 0 {
		comma = ','
	}
	if quote == 0 {
		quote = '"'
	}
	if len(w.specials) == 0 || w.specials[0] != comma || w.specials[1] != quote {
		w.specials = string([]byte{comma, quote, '\r', '\n'})
	}
	return comma, quote
}

func (w *Writer) writeField(field string, quote byte) {
	if !w.AlwaysQuote && !strings.ContainsAny(field, w.specials) {
		w.writeString(field)
		return
	}

	w.writeByte(quote)
	for {
		i := strings.IndexByte(field, quote)
		if i < 0 {
			break
		}
		// Emit through the quote, then repeat it.
		w.writeString(field[:i+1])
		w.writeByte(quote)
		field = field[i+1:]
	}
	w.writeString(field)
	w.writeByte(quote)
}

func (w *Writer) writeString(s string) {
	if w.err == nil {
		_, w.err = w.bw.WriteString(s)
	}
}

func (w *Writer) writeByte(c byte) {
	if w.err == nil {
		w.err = w.bw.WriteByte(c)
	}
}
