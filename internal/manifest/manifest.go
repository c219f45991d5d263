package manifest

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"romgen/internal/checksum"
	apperrors "romgen/internal/errors"
)

const (
	defaultImagesDir   = "src/images"
	defaultUserAgent   = "romgen/1.0 (Go asset generator)"
	defaultIndexSymbol = "apple2_nib_images"
	nibSymbolSuffix    = "_nib_image"
)

// Manifest lists every asset romgen produces and where it puts them.
type Manifest struct {
	ImagesDir string        `yaml:"images_dir"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Tools     Tools         `yaml:"tools"`
	Index     Index         `yaml:"index"`
	Disks     []Disk        `yaml:"disks"`
	ROMs      ROMHeader     `yaml:"roms"`
}

// Tools holds the paths of the external nibble converters.
type Tools struct {
	Woz2Dsk string `yaml:"woz2dsk"`
	Dsk2Nib string `yaml:"dsk2nib"`
}

// Index describes the aggregate header that lists every disk image.
type Index struct {
	Output       string   `yaml:"output"`
	Symbol       string   `yaml:"symbol"`
	Placeholders []string `yaml:"placeholders"`
}

// DiskFormat is the layout of a downloaded disk image.
type DiskFormat string

const (
	FormatDSK DiskFormat = "dsk"
	FormatWOZ DiskFormat = "woz"
)

// Disk describes one floppy image that ends up as a nibble array.
type Disk struct {
	Name   string             `yaml:"name"`
	URL    string             `yaml:"url"`
	Hash   checksum.Algorithm `yaml:"hash"`
	Digest string             `yaml:"digest"`
	Format DiskFormat         `yaml:"format"`
	ProDOS bool               `yaml:"prodos"`
}

// Symbol returns the C identifier of the disk's nibble array.
func (d Disk) Symbol() string {
	return d.Name + nibSymbolSuffix
}

// HeaderPath returns the per-disk header path below imagesDir.
func (d Disk) HeaderPath(imagesDir string) string {
	return filepath.Join(imagesDir, d.Name+".h")
}

// ROMHeader describes the generated ROM header and its arrays.
type ROMHeader struct {
	Output string     `yaml:"output"`
	Arrays []ROMArray `yaml:"arrays"`
}

// ROMArray is one C array built from one or more concatenated segments.
type ROMArray struct {
	Name     string    `yaml:"name"`
	Section  string    `yaml:"section"`
	Segments []Segment `yaml:"segments"`
}

// Segment is a single downloadable ROM dump.
type Segment struct {
	URL    string             `yaml:"url"`
	Hash   checksum.Algorithm `yaml:"hash"`
	Digest string             `yaml:"digest"`
}

//go:embed assets.yaml
var embeddedAssets embed.FS

// BaseManifest returns the embedded asset list.
func BaseManifest() (*Manifest, error) {
	data, err := embeddedAssets.ReadFile("assets.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded asset manifest")
	}
	return ParseManifest(data)
}

// LoadManifest reads a manifest file from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest: %s", path)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest data from bytes. Empty input yields an
// empty manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return &Manifest{}, nil
	}
	return decode(data)
}

// Merge combines manifests, later ones overriding earlier ones. Disks and ROM
// arrays are matched by name: a known name is replaced in place, a new name
// is appended, so declaration order of the first manifest is preserved. A
// name declared twice within one manifest is a validation error.
func Merge(manifests ...*Manifest) (*Manifest, error) {
	if len(manifests) == 0 {
		return nil, errors.New("no manifests provided")
	}

	var result Manifest
	diskIndex := make(map[string]int)
	romIndex := make(map[string]int)

	for _, m := range manifests {
		if m == nil {
			continue
		}

		if v := strings.TrimSpace(m.ImagesDir); v != "" {
			result.ImagesDir = v
		}
		if v := strings.TrimSpace(m.UserAgent); v != "" {
			result.UserAgent = v
		}
		if m.Timeout > 0 {
			result.Timeout = m.Timeout
		}
		if v := strings.TrimSpace(m.Tools.Woz2Dsk); v != "" {
			result.Tools.Woz2Dsk = v
		}
		if v := strings.TrimSpace(m.Tools.Dsk2Nib); v != "" {
			result.Tools.Dsk2Nib = v
		}
		if v := strings.TrimSpace(m.Index.Output); v != "" {
			result.Index.Output = v
		}
		if v := strings.TrimSpace(m.Index.Symbol); v != "" {
			result.Index.Symbol = v
		}
		if m.Index.Placeholders != nil {
			result.Index.Placeholders = append([]string(nil), m.Index.Placeholders...)
		}
		if v := strings.TrimSpace(m.ROMs.Output); v != "" {
			result.ROMs.Output = v
		}

		layerDisks := make(map[string]struct{}, len(m.Disks))
		for _, disk := range m.Disks {
			if _, dup := layerDisks[disk.Name]; dup {
				return nil, duplicateName("disk", disk.Name)
			}
			layerDisks[disk.Name] = struct{}{}
			if idx, ok := diskIndex[disk.Name]; ok {
				result.Disks[idx] = disk
				continue
			}
			diskIndex[disk.Name] = len(result.Disks)
			result.Disks = append(result.Disks, disk)
		}
		layerROMs := make(map[string]struct{}, len(m.ROMs.Arrays))
		for _, rom := range m.ROMs.Arrays {
			if _, dup := layerROMs[rom.Name]; dup {
				return nil, duplicateName("rom array", rom.Name)
			}
			layerROMs[rom.Name] = struct{}{}
			if idx, ok := romIndex[rom.Name]; ok {
				result.ROMs.Arrays[idx] = rom
				continue
			}
			romIndex[rom.Name] = len(result.ROMs.Arrays)
			result.ROMs.Arrays = append(result.ROMs.Arrays, rom)
		}
	}

	if result.ImagesDir == "" {
		result.ImagesDir = defaultImagesDir
	}
	if result.UserAgent == "" {
		result.UserAgent = defaultUserAgent
	}
	if result.Index.Output == "" {
		result.Index.Output = filepath.Join(result.ImagesDir, "apple2_images.h")
	}
	if result.Index.Symbol == "" {
		result.Index.Symbol = defaultIndexSymbol
	}

	return &result, nil
}

// Load returns the embedded manifest, merged with the file at overridePath
// when one is given, and validated.
func Load(overridePath string) (*Manifest, error) {
	base, err := BaseManifest()
	if err != nil {
		return nil, err
	}

	layers := []*Manifest{base}
	if overridePath != "" {
		extra, err := LoadManifest(overridePath)
		if err != nil {
			return nil, err
		}
		layers = append(layers, extra)
	}

	merged, err := Merge(layers...)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Resolve returns path joined to root unless path is already absolute.
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func duplicateName(kind, name string) *apperrors.AppError {
	return apperrors.ValidationError(apperrors.CodeValidationGeneric, kind+" declared twice", nil).
		WithModule("manifest").
		WithOperation("Merge").
		WithField("name", name)
}

func decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse asset manifest")
	}
	return &m, nil
}
