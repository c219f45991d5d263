package emitter

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "romgen/internal/errors"
)

var declarationPattern = regexp.MustCompile(`uint8_t\s+(?:\S+\s+)?([A-Za-z_][A-Za-z0-9_]*)\[\]\s*=\s*\{`)

// ParseArray reads back the first byte array in src and returns its name
// and contents.
func ParseArray(src string) (string, []byte, error) {
	a, _, err := parseNext(src)
	if err != nil {
		return a.Name, nil, err
	}
	return a.Name, a.Data, nil
}

// ParseArrays reads back every byte array in src, in order. Sections are not
// recovered.
func ParseArrays(src string) ([]Array, error) {
	var arrays []Array
	for {
		if declarationPattern.FindStringIndex(src) == nil {
			return arrays, nil
		}
		a, rest, err := parseNext(src)
		if err != nil {
			return arrays, err
		}
		arrays = append(arrays, a)
		src = rest
	}
}

func parseNext(src string) (Array, string, error) {
	loc := declarationPattern.FindStringSubmatchIndex(src)
	if loc == nil {
		return Array{}, "", parseError("no byte array declaration found", nil)
	}
	name := src[loc[2]:loc[3]]

	rest := src[loc[1]:]
	end := strings.Index(rest, "};")
	if end < 0 {
		return Array{Name: name}, "", parseError("unterminated array", nil).WithField("symbol", name)
	}

	data := make([]byte, 0, end/4)
	for _, item := range strings.Split(rest[:end], ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		v, err := strconv.ParseUint(item, 10, 8)
		if err != nil {
			return Array{Name: name}, "", parseError("invalid byte value", err).
				WithFields(apperrors.Metadata{"symbol": name, "value": item})
		}
		data = append(data, byte(v))
	}
	return Array{Name: name, Data: data}, rest[end+2:], nil
}

func parseError(message string, err error) *apperrors.AppError {
	return apperrors.ValidationError(apperrors.CodeValidationGeneric, message, err).
		WithModule("emitter").
		WithOperation("ParseArray")
}
