package manifest

import (
	"fmt"
	"net/url"
	"regexp"

	"romgen/internal/checksum"
	apperrors "romgen/internal/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the invariants every later stage relies on. It reports the
// first violation found, in declaration order.
func (m *Manifest) Validate() error {
	if m == nil {
		return invalid("manifest is required", nil)
	}
	if m.Index.Output == "" {
		return invalid("index output path is required", nil)
	}

	symbols := make(map[string]string)
	claim := func(symbol, owner string) error {
		if !identifierPattern.MatchString(symbol) {
			return invalid("symbol is not a C identifier", apperrors.Metadata{"symbol": symbol, "owner": owner})
		}
		if prev, ok := symbols[symbol]; ok {
			return invalid("symbol declared twice", apperrors.Metadata{"symbol": symbol, "owner": owner, "previous": prev})
		}
		symbols[symbol] = owner
		return nil
	}

	if err := claim(m.Index.Symbol, "index"); err != nil {
		return err
	}
	for _, placeholder := range m.Index.Placeholders {
		if err := claim(placeholder, "index placeholder"); err != nil {
			return err
		}
	}

	for i, disk := range m.Disks {
		owner := fmt.Sprintf("disks[%d]", i)
		if disk.Name == "" {
			return invalid("disk name is required", apperrors.Metadata{"owner": owner})
		}
		if err := claim(disk.Symbol(), owner); err != nil {
			return err
		}
		if err := validateSource(owner, disk.URL, disk.Hash, disk.Digest); err != nil {
			return err
		}
		switch disk.Format {
		case FormatDSK:
		case FormatWOZ:
			if disk.ProDOS {
				return invalid("prodos ordering only applies to dsk images", apperrors.Metadata{"disk": disk.Name})
			}
		default:
			return invalid("unknown disk format", apperrors.Metadata{"disk": disk.Name, "format": string(disk.Format)})
		}
	}

	if len(m.ROMs.Arrays) > 0 && m.ROMs.Output == "" {
		return invalid("rom header output path is required", nil)
	}
	for i, rom := range m.ROMs.Arrays {
		owner := fmt.Sprintf("roms.arrays[%d]", i)
		if err := claim(rom.Name, owner); err != nil {
			return err
		}
		if len(rom.Segments) == 0 {
			return invalid("rom array has no segments", apperrors.Metadata{"rom": rom.Name})
		}
		for j, seg := range rom.Segments {
			if err := validateSource(fmt.Sprintf("%s.segments[%d]", owner, j), seg.URL, seg.Hash, seg.Digest); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateSource(owner, rawURL string, algo checksum.Algorithm, digest string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("source url must be an absolute http(s) url", apperrors.Metadata{"owner": owner, "url": rawURL})
	}
	if checksum.HexLen(algo) == 0 {
		return apperrors.ValidationError(apperrors.CodeUnknownAlgorithm, "unsupported hash algorithm", nil).
			WithModule("manifest").
			WithOperation("Validate").
			WithFields(apperrors.Metadata{
				"owner":     owner,
				"algorithm": string(algo),
				"supported": checksum.SupportedList(),
			})
	}
	if !checksum.ValidDigest(algo, digest) {
		return invalid("digest must be lowercase hex of the algorithm's length", apperrors.Metadata{
			"owner":     owner,
			"algorithm": string(algo),
			"digest":    digest,
		})
	}
	return nil
}

func invalid(message string, metadata apperrors.Metadata) *apperrors.AppError {
	return apperrors.ValidationError(apperrors.CodeValidationGeneric, message, nil).
		WithModule("manifest").
		WithOperation("Validate").
		WithFields(metadata)
}
