// Package csvfix repairs malformed quoting in CSV files.
//
// Some CSV producers emit quote characters inside fields without doubling
// them, which breaks strict parsers. csvfix streams a document through a
// lenient tokenizer, doubles every quote that is not at the first or last
// position of a field, and writes the result back with minimal quoting.
//
// # Components
//
//   - Reader: streaming RFC 4180 tokenizer with optional lazy quote handling
//     and precise ParseError locations.
//   - Writer: buffered serializer that quotes only fields containing the
//     delimiter, the quote character or a line break.
//   - QuoteFixer: the per-field quote correction.
//   - Fix and FixFile: the record pipeline and its file wrapper.
//
// The command-line front end lives in cmd/csvfix.
package csvfix
