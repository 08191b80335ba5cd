package csvfix

import (
	"errors"
	"fmt"
	"io"
	"unsafe"
)

const defaultBufferSize = 4 << 10

// maxEmptyReads bounds consecutive (0, nil) reads from a misbehaving source.
const maxEmptyReads = 100

var (
	// ErrBareQuote is returned when a quote appears in an unquoted field and LazyQuotes is off.
	ErrBareQuote = errors.New("bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when input ends inside a quoted field and LazyQuotes is off.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrFieldCount is wrapped in the ParseError returned alongside a record whose
	// width differs from FieldsPerRecord.
	ErrFieldCount = errors.New("wrong number of fields")
)

// ParseError contains location information for CSV parsing errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// terminator reports what ended a field.
type terminator int

const (
	endComma terminator = iota
	endLine
	endInput
)

// Reader is a streaming CSV tokenizer.
type Reader struct {
	src io.Reader

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// LazyQuotes accepts quotes that do not follow RFC 4180: a quote inside an
	// unquoted field is kept literally, as is a quote inside a quoted field that
	// is not doubled and does not precede a delimiter or line break.
	LazyQuotes bool
	// ReuseRecord lets Read return a slice backed by storage reused on the next call.
	ReuseRecord bool
	// FieldsPerRecord is the expected record width. Zero captures the width of
	// the first record; a negative value disables the check.
	FieldsPerRecord int

	buf    []byte
	pos    int
	end    int
	srcErr error

	record []string
	data   []byte
	bounds []int

	line       int
	recordLine int
	col        int
	err        error
}

// NewReader returns a Reader consuming r. It panics if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("csvfix: reader source cannot be nil")
	}
	return &Reader{
		src:    r,
		Comma:  ',',
		Quote:  '"',
		buf:    make([]byte, defaultBufferSize),
		record: make([]string, 0, 16),
		data:   make([]byte, 0, 512),
		bounds: make([]int, 0, 32),
		line:   1,
	}
}

// Read returns the next record. It returns io.EOF once the input is exhausted.
// A blank line is returned as a record with no fields and is never checked
// against FieldsPerRecord. A record with the wrong width is returned together
// with a *ParseError wrapping ErrFieldCount; any other error ends the stream
// and is returned again by later calls.
func (r *Reader) Read() ([]string, error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.err != nil {
		return nil, r.err
	}

	comma, quote := r.delimiters()
	r.recordLine = r.line
	r.data = r.data[:0]
	r.bounds = r.bounds[:0]

	b, err := r.peekByte()
	if err != nil {
		r.err = err
		return nil, err
	}
	if b == '\n' || b == '\r' {
		r.advance(1)
		if b == '\r' {
			if err := r.skipLF(); err != nil {
				r.err = err
				return nil, err
			}
		}
		r.newline()
		return r.buildRecord()
	}

	for {
		start := len(r.data)
		end, err := r.readField(comma, quote)
		if err != nil {
			r.err = err
			return nil, err
		}
		r.bounds = append(r.bounds, start, len(r.data))
		if end == endComma {
			continue
		}
		if end == endInput {
			r.err = io.EOF
		}
		return r.buildRecord()
	}
}

// Line reports the current input line, counting line breaks inside quoted fields.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) delimiters() (comma, quote byte) {
	comma, quote = r.Comma, r.Quote
	if comma == 0 {
		comma = ','
	}
	if quote == 0 {
		quote = '"'
	}
	return comma, quote
}

func (r *Reader) readField(comma, quote byte) (terminator, error) {
	b, err := r.peekByte()
	if err == io.EOF {
		return endInput, nil
	}
	if err != nil {
		return 0, err
	}
	if b == quote {
		r.advance(1)
		return r.readQuoted(comma, quote)
	}
	return r.readPlain(comma, quote)
}

// readPlain consumes an unquoted field up to and including its terminator.
func (r *Reader) readPlain(comma, quote byte) (terminator, error) {
	for {
		if err := r.fill(); err != nil {
			if err == io.EOF {
				return endInput, nil
			}
			return 0, err
		}

		window := r.buf[r.pos:r.end]
		i := indexPlainStop(window, comma, quote)
		if i < 0 {
			r.data = append(r.data, window...)
			r.advance(len(window))
			continue
		}
		r.data = append(r.data, window[:i]...)
		r.advance(i + 1)

		switch window[i] {
		case comma:
			return endComma, nil
		case '\n':
			r.newline()
			return endLine, nil
		case '\r':
			if err := r.skipLF(); err != nil {
				return 0, err
			}
			r.newline()
			return endLine, nil
		default:
			if !r.LazyQuotes {
				return 0, r.wrapError(r.col, ErrBareQuote)
			}
			r.data = append(r.data, quote)
		}
	}
}

// readQuoted consumes a quoted field whose opening quote was already consumed.
func (r *Reader) readQuoted(comma, quote byte) (terminator, error) {
	for {
		if err := r.fill(); err != nil {
			if err != io.EOF {
				return 0, err
			}
			if !r.LazyQuotes {
				return 0, r.wrapError(r.col+1, ErrUnterminatedQuote)
			}
			return endInput, nil
		}

		window := r.buf[r.pos:r.end]
		i := indexQuotedStop(window, quote)
		if i < 0 {
			r.data = append(r.data, window...)
			r.advance(len(window))
			continue
		}
		r.data = append(r.data, window[:i]...)
		r.advance(i + 1)

		if window[i] == '\n' {
			r.data = append(r.data, '\n')
			r.newline()
			continue
		}

		next, err := r.peekByte()
		switch {
		case err == io.EOF:
			return endInput, nil
		case err != nil:
			return 0, err
		case next == quote:
			r.advance(1)
			r.data = append(r.data, quote)
		case next == comma:
			r.advance(1)
			return endComma, nil
		case next == '\n':
			r.advance(1)
			r.newline()
			return endLine, nil
		case next == '\r':
			r.advance(1)
			if err := r.skipLF(); err != nil {
				return 0, err
			}
			r.newline()
			return endLine, nil
		case r.LazyQuotes:
			r.data = append(r.data, quote)
		default:
			// The quoted section is closed; the rest of the field is unquoted
			// and may not contain another quote.
			return r.readPlain(comma, quote)
		}
	}
}

func indexPlainStop(data []byte, comma, quote byte) int {
	for i, c := range data {
		if c == comma || c == quote || c == '\n' || c == '\r' {
			return i
		}
	}
	return -1
}

func indexQuotedStop(data []byte, quote byte) int {
	for i, c := range data {
		if c == quote || c == '\n' {
			return i
		}
	}
	return -1
}

// buildRecord slices the accumulated field bounds out of the data buffer.
func (r *Reader) buildRecord() ([]string, error) {
	fieldCount := len(r.bounds) / 2

	var recordStr string
	if r.ReuseRecord {
		if len(r.data) > 0 {
			// Fields share the data buffer until the next Read.
			recordStr = unsafe.String(unsafe.SliceData(r.data), len(r.data))
		}
		if cap(r.record) < fieldCount {
			r.record = make([]string, fieldCount)
		}
		r.record = r.record[:fieldCount]
	} else {
		recordStr = string(r.data)
		r.record = make([]string, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		r.record[i] = recordStr[r.bounds[2*i]:r.bounds[2*i+1]]
	}

	switch {
	case fieldCount == 0, r.FieldsPerRecord < 0:
	case r.FieldsPerRecord == 0:
		r.FieldsPerRecord = fieldCount
	case fieldCount != r.FieldsPerRecord:
		return r.record, &ParseError{Line: r.recordLine, Column: 1, Err: ErrFieldCount}
	}
	return r.record, nil
}

// wrapError locates err at column of the current line.
func (r *Reader) wrapError(column int, err error) error {
	return &ParseError{Line: r.line, Column: column, Err: err}
}

func (r *Reader) advance(n int) {
	r.pos += n
	r.col += n
}

func (r *Reader) newline() {
	r.line++
	r.col = 0
}

// skipLF consumes a '\n' directly following a consumed '\r'.
func (r *Reader) skipLF() error {
	next, err := r.peekByte()
	if err == nil && next == '\n' {
		r.pos++
		return nil
	}
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// peekByte returns the next byte without consuming it.
func (r *Reader) peekByte() (byte, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}
	return r.buf[r.pos], nil
}

// fill refills the buffer once it is drained. A source error is reported only
// after the bytes returned with it were consumed.
func (r *Reader) fill() error {
	for empty := 0; r.pos >= r.end; empty++ {
		if r.srcErr != nil {
			return r.srcErr
		}
		if empty == maxEmptyReads {
			return io.ErrNoProgress
		}
		n, err := r.src.Read(r.buf)
		r.pos, r.end = 0, n
		r.srcErr = err
	}
	return nil
}
