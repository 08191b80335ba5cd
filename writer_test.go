package csvfix

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records [][]string
		config  func(*Writer)
		want    string
	}{
		{
			name:    "basic",
			records: [][]string{{"a", "b", "c"}},
			want:    "a,b,c\n",
		},
		{
			name:    "multipleRecords",
			records: [][]string{{"alpha", "beta"}, {"gamma", "delta"}},
			want:    "alpha,beta\ngamma,delta\n",
		},
		{
			name:    "emptyField",
			records: [][]string{{"", "b"}},
			want:    ",b\n",
		},
		{
			name:    "commaForcesQuote",
			records: [][]string{{"alpha,beta"}},
			want:    "\"alpha,beta\"\n",
		},
		{
			name:    "quoteEscaping",
			records: [][]string{{"he said \"hello\"", "plain"}},
			want:    "\"he said \"\"hello\"\"\",plain\n",
		},
		{
			name:    "loneQuote",
			records: [][]string{{"\""}},
			want:    "\"\"\"\"\n",
		},
		{
			name:    "newlineForcesQuote",
			records: [][]string{{"multi\nline", "z"}},
			want:    "\"multi\nline\",z\n",
		},
		{
			name:    "carriageReturnForcesQuote",
			records: [][]string{{"a\rb"}},
			want:    "\"a\rb\"\n",
		},
		{
			name:    "spacesAreNotQuoted",
			records: [][]string{{" padded ", "x"}},
			want:    " padded ,x\n",
		},
		{
			name:    "alwaysQuote",
			records: [][]string{{"alpha", "beta"}},
			config:  func(w *Writer) { w.AlwaysQuote = true },
			want:    "\"alpha\",\"beta\"\n",
		},
		{
			name:    "customComma",
			records: [][]string{{"a;b", "c,d"}},
			config:  func(w *Writer) { w.Comma = ';' },
			want:    "\"a;b\";c,d\n",
		},
		{
			name:    "customQuote",
			records: [][]string{{"alpha'beta", "plain\"text"}},
			config:  func(w *Writer) { w.Quote = '\'' },
			want:    "'alpha''beta',plain\"text\n",
		},
		{
			name:    "noFieldsIsBlankLine",
			records: [][]string{{"a"}, {}, {"b"}},
			want:    "a\n\nb\n",
		},
		{
			name:    "loneEmptyFieldIsQuoted",
			records: [][]string{{"a"}, {""}, {"b"}},
			want:    "a\n\"\"\nb\n",
		},
		{
			name:    "loneEmptyFieldAlwaysQuote",
			records: [][]string{{""}},
			config:  func(w *Writer) { w.AlwaysQuote = true },
			want:    "\"\"\n",
		},
		{
			name:    "twoEmptyFieldsAreNotQuoted",
			records: [][]string{{"", ""}},
			want:    ",\n",
		},
		{
			name:    "useCRLF",
			records: [][]string{{"a"}, {"b"}},
			config:  func(w *Writer) { w.UseCRLF = true },
			want:    "a\r\nb\r\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w := NewWriter(&buf)
			if tc.config != nil {
				tc.config(w)
			}
			for _, rec := range tc.records {
				require.NoError(t, w.Write(rec))
			}
			require.NoError(t, w.Flush())
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	t.Parallel()

	records := [][]string{
		{"plain", "with,comma", "with \"quote\""},
		{"multi\r\nline", "", "\""},
		{""},
		{},
		{"last"},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.UseCRLF = true
	for _, rec := range records {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Flush())

	got, err := readAllRecords(NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriterDelimiterChange(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{"a;b", "c"}))
	w.Comma = ';'
	require.NoError(t, w.Write([]string{"a;b", "c,d"}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "a;b,c\n\"a;b\";c,d\n", buf.String())
}

type failWriter struct {
	err error
}

func (f *failWriter) Write([]byte) (int, error) {
	return 0, f.err
}

func TestWriterFlushError(t *testing.T) {
	t.Parallel()

	exp := errors.New("flush failed")
	w := NewWriter(&failWriter{err: exp})

	require.NoError(t, w.Write([]string{"a"}))
	assert.ErrorIs(t, w.Flush(), exp)
	assert.ErrorIs(t, w.Write([]string{"b"}), exp, "Write should return the stored error")
	assert.ErrorIs(t, w.Error(), exp)
}

func TestWriterNilDestination(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewWriter(nil) })
	assert.NoError(t, NewWriter(&strings.Builder{}).Error())
}
