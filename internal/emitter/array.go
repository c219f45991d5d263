// Package emitter renders byte payloads as C source and writes the
// generated headers.
package emitter

import (
	"bytes"
	"fmt"
	"io"

	apperrors "romgen/internal/errors"
)

// BytesPerRow is the number of values on each line of an emitted array.
const BytesPerRow = 8

const rowIndent = "    "

// Array is one C byte array declaration.
type Array struct {
	Name string
	// Section is an optional placement attribute such as
	// "__not_in_flash()". Arrays without one are emitted const.
	Section string
	Data    []byte
}

// Declaration returns the opening line of the array.
func (a Array) Declaration() string {
	if a.Section == "" {
		return fmt.Sprintf("const uint8_t %s[] = {", a.Name)
	}
	return fmt.Sprintf("uint8_t %s %s[] = {", a.Section, a.Name)
}

// WriteArray writes a as a C array initializer, BytesPerRow values per line,
// each right aligned to three columns and followed by a comma.
func WriteArray(w io.Writer, a Array) error {
	var buf bytes.Buffer
	renderArray(&buf, a)
	return write(w, buf.Bytes(), "WriteArray")
}

func renderArray(buf *bytes.Buffer, a Array) {
	buf.WriteString(a.Declaration())
	buf.WriteByte('\n')
	for start := 0; start < len(a.Data); start += BytesPerRow {
		end := start + BytesPerRow
		if end > len(a.Data) {
			end = len(a.Data)
		}
		buf.WriteString(rowIndent)
		for i, b := range a.Data[start:end] {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(buf, "%3d", b)
		}
		buf.WriteString(",\n")
	}
	buf.WriteString("};\n")
}

func write(w io.Writer, data []byte, operation string) error {
	if _, err := w.Write(data); err != nil {
		return apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to write generated source", err).
			WithModule("emitter").
			WithOperation(operation)
	}
	return nil
}
