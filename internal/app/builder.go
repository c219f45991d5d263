package app

import (
	"context"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"romgen/internal/checksum"
	"romgen/internal/converter"
	"romgen/internal/emitter"
	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
	"romgen/internal/manifest"
)

// Fetcher downloads a payload and verifies its digest.
type Fetcher interface {
	FetchVerified(ctx context.Context, url string, algo checksum.Algorithm, expectedDigest string) ([]byte, error)
}

// Converter turns a disk image into a nibble image.
type Converter interface {
	Convert(ctx context.Context, tool converter.Tool, input []byte, prodos bool) ([]byte, error)
}

// Builder produces the generated headers described by a manifest. Relative
// manifest paths are resolved against root.
type Builder struct {
	manifest  *manifest.Manifest
	root      string
	fetcher   Fetcher
	converter Converter
	fs        emitter.FileSystem
	logger    logger.Logger
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithFileSystem replaces the filesystem used to inspect and publish headers.
func WithFileSystem(fs emitter.FileSystem) BuilderOption {
	return func(b *Builder) {
		b.fs = fs
	}
}

// NewBuilder constructs a Builder.
func NewBuilder(m *manifest.Manifest, root string, fetcher Fetcher, conv Converter, log logger.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		manifest:  m,
		root:      root,
		fetcher:   fetcher,
		converter: conv,
		fs:        emitter.OSFileSystem{},
		logger:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildDisks generates the header of every disk whose header is missing, in
// declaration order. The returned index lists every declared disk, whether
// it was built now or already present.
func (b *Builder) BuildDisks(ctx context.Context) (emitter.Index, error) {
	ix := emitter.Index{
		Symbol:       b.manifest.Index.Symbol,
		Placeholders: b.manifest.Index.Placeholders,
	}

	for _, disk := range b.manifest.Disks {
		if err := ctx.Err(); err != nil {
			return ix, err
		}
		if err := b.buildDisk(ctx, disk); err != nil {
			return ix, apperrors.Annotate(err, apperrors.ErrCategoryFilesystem, "app", "BuildDisks").
				WithField("asset", disk.Name)
		}
		ix = ix.Add(b.includeName(disk), disk.Symbol())
	}

	return ix, nil
}

func (b *Builder) buildDisk(ctx context.Context, disk manifest.Disk) error {
	out := b.DiskHeaderPath(disk)

	exists, err := emitter.Exists(b.fs, out)
	if err != nil {
		return err
	}
	if exists {
		b.logger.Debug("Skipping %s: %s already exists", disk.Name, out)
		return nil
	}

	tool, err := b.toolFor(disk)
	if err != nil {
		return err
	}

	b.logger.Info("Downloading and converting %s", disk.Name)

	image, err := b.fetcher.FetchVerified(ctx, disk.URL, disk.Hash, disk.Digest)
	if err != nil {
		return err
	}
	nib, err := b.converter.Convert(ctx, tool, image, disk.ProDOS)
	if err != nil {
		return err
	}

	data := emitter.RenderArray(emitter.Array{Name: disk.Symbol(), Data: nib})
	if err := emitter.WriteFileAtomic(b.fs, out, data); err != nil {
		return err
	}

	b.logger.Info("Generated %s (%s nibble image)", out, humanize.Bytes(uint64(len(nib))))
	return nil
}

// WriteIndex publishes the aggregate header for ix. An index whose rendering
// matches the file on disk is left untouched.
func (b *Builder) WriteIndex(ix emitter.Index) error {
	out := b.IndexPath()

	wrote, err := emitter.WriteFileIfChanged(b.fs, out, emitter.RenderIndex(ix))
	if err != nil {
		return apperrors.Annotate(err, apperrors.ErrCategoryFilesystem, "app", "WriteIndex")
	}
	if wrote {
		b.logger.Info("Generated %s (%d images)", out, len(ix.Entries))
	} else {
		b.logger.Debug("Index %s is up to date", out)
	}
	return nil
}

// BuildROMs fetches every ROM segment, concatenates the segments of each
// array and publishes the ROM header. It always fetches.
func (b *Builder) BuildROMs(ctx context.Context) error {
	header := b.manifest.ROMs
	if len(header.Arrays) == 0 {
		b.logger.Debug("No ROM arrays declared")
		return nil
	}

	arrays := make([]emitter.Array, 0, len(header.Arrays))
	for _, rom := range header.Arrays {
		var data []byte
		for _, seg := range rom.Segments {
			if err := ctx.Err(); err != nil {
				return err
			}
			payload, err := b.fetcher.FetchVerified(ctx, seg.URL, seg.Hash, seg.Digest)
			if err != nil {
				return apperrors.Annotate(err, apperrors.ErrCategoryNetwork, "app", "BuildROMs").
					WithField("asset", rom.Name)
			}
			data = append(data, payload...)
		}
		arrays = append(arrays, emitter.Array{Name: rom.Name, Section: rom.Section, Data: data})
	}

	out := b.ROMHeaderPath()
	wrote, err := emitter.WriteFileIfChanged(b.fs, out, emitter.RenderROMHeader(arrays))
	if err != nil {
		return apperrors.Annotate(err, apperrors.ErrCategoryFilesystem, "app", "BuildROMs")
	}
	if wrote {
		b.logger.Info("Generated %s (%d arrays)", out, len(arrays))
	} else {
		b.logger.Debug("ROM header %s is up to date", out)
	}
	return nil
}

// DiskHeaderPath returns the resolved header path of disk.
func (b *Builder) DiskHeaderPath(disk manifest.Disk) string {
	return manifest.Resolve(b.root, disk.HeaderPath(b.manifest.ImagesDir))
}

// IndexPath returns the resolved aggregate header path.
func (b *Builder) IndexPath() string {
	return manifest.Resolve(b.root, b.manifest.Index.Output)
}

// ROMHeaderPath returns the resolved ROM header path.
func (b *Builder) ROMHeaderPath() string {
	return manifest.Resolve(b.root, b.manifest.ROMs.Output)
}

func (b *Builder) toolFor(disk manifest.Disk) (converter.Tool, error) {
	switch disk.Format {
	case manifest.FormatWOZ:
		return converter.Woz2Dsk(manifest.Resolve(b.root, b.manifest.Tools.Woz2Dsk)), nil
	case manifest.FormatDSK:
		return converter.Dsk2Nib(manifest.Resolve(b.root, b.manifest.Tools.Dsk2Nib)), nil
	default:
		return converter.Tool{}, apperrors.ValidationError(apperrors.CodeValidationGeneric, "unknown disk format", nil).
			WithModule("app").
			WithOperation("BuildDisks").
			WithFields(apperrors.Metadata{"asset": disk.Name, "format": string(disk.Format)})
	}
}

// includeName returns the path of the disk header relative to the index
// header, which is what the index's #include lines need.
func (b *Builder) includeName(disk manifest.Disk) string {
	header := disk.HeaderPath(b.manifest.ImagesDir)
	rel, err := filepath.Rel(filepath.Dir(b.manifest.Index.Output), header)
	if err != nil {
		return filepath.Base(header)
	}
	return filepath.ToSlash(rel)
}
