package emitter

import (
	"bytes"
	"io"
)

// RenderROMHeader returns a header holding every array, wrapped in
// clang-format guards so the formatter leaves the tables alone.
func RenderROMHeader(arrays []Array) []byte {
	var buf bytes.Buffer
	buf.WriteString("#pragma once\n")
	buf.WriteString("// clang-format off\n")
	for _, a := range arrays {
		renderArray(&buf, a)
	}
	buf.WriteString("// clang-format on\n")
	return buf.Bytes()
}

// WriteROMHeader writes the ROM header for arrays.
func WriteROMHeader(w io.Writer, arrays []Array) error {
	return write(w, RenderROMHeader(arrays), "WriteROMHeader")
}

// RenderArray returns a single array as a standalone header body.
func RenderArray(a Array) []byte {
	var buf bytes.Buffer
	renderArray(&buf, a)
	return buf.Bytes()
}
