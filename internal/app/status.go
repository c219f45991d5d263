package app

import (
	"path/filepath"
	"strings"

	"romgen/internal/emitter"
	"romgen/internal/ui"
)

// Status inspects the generated headers without fetching anything.
func (b *Builder) Status() ([]ui.AssetRow, error) {
	rows := make([]ui.AssetRow, 0, len(b.manifest.Disks)+len(b.manifest.ROMs.Arrays))

	for _, disk := range b.manifest.Disks {
		path := b.DiskHeaderPath(disk)
		row := ui.AssetRow{Kind: "disk", Name: disk.Name, Output: b.display(path), Status: ui.StatusMissing}

		arrays, present, err := b.readArrays(path)
		if err != nil {
			return nil, err
		}
		if present {
			row.Status = ui.StatusInvalid
			if a, ok := findArray(arrays, disk.Symbol()); ok {
				row.Status = ui.StatusBuilt
				row.Size = len(a.Data)
			}
		}
		rows = append(rows, row)
	}

	if len(b.manifest.ROMs.Arrays) == 0 {
		return rows, nil
	}

	path := b.ROMHeaderPath()
	arrays, present, err := b.readArrays(path)
	if err != nil {
		return nil, err
	}
	for _, rom := range b.manifest.ROMs.Arrays {
		row := ui.AssetRow{Kind: "rom", Name: rom.Name, Output: b.display(path), Status: ui.StatusMissing}
		if present {
			row.Status = ui.StatusInvalid
			if a, ok := findArray(arrays, rom.Name); ok {
				row.Status = ui.StatusBuilt
				row.Size = len(a.Data)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// readArrays parses the header at path. A header that exists but cannot be
// read or parsed is logged and reported as present with no arrays.
func (b *Builder) readArrays(path string) ([]emitter.Array, bool, error) {
	exists, err := emitter.Exists(b.fs, path)
	if err != nil || !exists {
		return nil, false, err
	}
	data, err := b.fs.ReadFile(path)
	if err != nil {
		b.logger.Warn("Failed to read %s: %v", path, err)
		return nil, true, nil
	}
	arrays, err := emitter.ParseArrays(string(data))
	if err != nil {
		b.logger.Warn("Failed to parse %s: %v", path, err)
		return nil, true, nil
	}
	return arrays, true, nil
}

func (b *Builder) display(path string) string {
	rel, err := filepath.Rel(b.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func findArray(arrays []emitter.Array, name string) (emitter.Array, bool) {
	for _, a := range arrays {
		if a.Name == name {
			return a, true
		}
	}
	return emitter.Array{}, false
}
