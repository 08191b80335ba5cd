package csvfix

import "strings"

// QuoteFixer escapes stray quotes inside CSV fields.
//
// A quote at the first or last position of a field is taken to be one of the
// field's own delimiting quotes and is left alone. Every other quote is
// doubled. The transform is a one-shot correction: running it again on its
// own output doubles the interior quotes again.
type QuoteFixer struct {
	// Quote is the quote character. Default is '"'.
	Quote byte
}

// FixQuotes applies the default QuoteFixer to field.
func FixQuotes(field string) string {
	return QuoteFixer{}.Fix(field)
}

// Fix returns field with every interior quote doubled. Positions are compared
// without trimming whitespace.
func (f QuoteFixer) Fix(field string) string {
	// Fields shorter than three bytes have no interior position.
	if len(field) < 3 {
		return field
	}
	quote := f.quote()
	inner := field[1 : len(field)-1]
	n := countByte(inner, quote)
	if n == 0 {
		return field
	}

	var b strings.Builder
	b.Grow(len(field) + n)
	b.WriteByte(field[0])
	for {
		i := strings.IndexByte(inner, quote)
		if i < 0 {
			break
		}
		b.WriteString(inner[:i+1])
		b.WriteByte(quote)
		inner = inner[i+1:]
	}
	b.WriteString(inner)
	b.WriteByte(field[len(field)-1])
	return b.String()
}

// FixRecord appends the fixed form of each field of record to dst[:0] and
// returns it. The result always has the width and order of record.
func (f QuoteFixer) FixRecord(dst, record []string) []string {
	dst = dst[:0]
	for _, field := range record {
		dst = append(dst, f.Fix(field))
	}
	return dst
}

func (f QuoteFixer) quote() byte {
	if f.Quote == 0 {
		return '"'
	}
	return f.Quote
}

func countByte(s string, c byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			n++
		}
	}
	return n
}
