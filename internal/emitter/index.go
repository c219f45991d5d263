package emitter

import (
	"bytes"
	"fmt"
	"io"
)

// IndexEntry is one disk image listed in the aggregate header.
type IndexEntry struct {
	Include string
	Symbol  string
}

// Index is the ordered list of disk images behind the aggregate pointer
// array. The consumer indexes the array by position, so entry order is
// significant.
type Index struct {
	Symbol       string
	Entries      []IndexEntry
	Placeholders []string
}

// Add appends an entry and returns the extended index.
func (ix Index) Add(include, symbol string) Index {
	ix.Entries = append(ix.Entries, IndexEntry{Include: include, Symbol: symbol})
	return ix
}

// Symbols returns the entry symbols in order.
func (ix Index) Symbols() []string {
	out := make([]string, len(ix.Entries))
	for i, e := range ix.Entries {
		out[i] = e.Symbol
	}
	return out
}

// RenderIndex returns the aggregate header text.
func RenderIndex(ix Index) []byte {
	var buf bytes.Buffer

	buf.WriteString("#pragma once\n")
	if len(ix.Entries) > 0 {
		buf.WriteByte('\n')
	}
	for _, e := range ix.Entries {
		fmt.Fprintf(&buf, "#include %q\n", e.Include)
	}

	fmt.Fprintf(&buf, "\nconst uint8_t *%s[] = {\n", ix.Symbol)
	for _, e := range ix.Entries {
		fmt.Fprintf(&buf, "%s%s,\n", rowIndent, e.Symbol)
	}
	buf.WriteString("};\n")

	if len(ix.Placeholders) > 0 {
		buf.WriteByte('\n')
	}
	for _, p := range ix.Placeholders {
		fmt.Fprintf(&buf, "const uint8_t *%s[] = {};\n", p)
	}

	return buf.Bytes()
}

// WriteIndex writes the aggregate header for ix.
func WriteIndex(w io.Writer, ix Index) error {
	return write(w, RenderIndex(ix), "WriteIndex")
}
