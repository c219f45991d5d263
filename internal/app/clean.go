package app

import (
	"romgen/internal/emitter"
	apperrors "romgen/internal/errors"
)

// CleanTargets returns the generated disk headers and the index that exist.
// The ROM header is not a target: it is rebuilt on every run.
func (b *Builder) CleanTargets() ([]string, error) {
	candidates := make([]string, 0, len(b.manifest.Disks)+1)
	for _, disk := range b.manifest.Disks {
		candidates = append(candidates, b.DiskHeaderPath(disk))
	}
	candidates = append(candidates, b.IndexPath())

	var targets []string
	for _, path := range candidates {
		exists, err := emitter.Exists(b.fs, path)
		if err != nil {
			return nil, err
		}
		if exists {
			targets = append(targets, path)
		}
	}
	return targets, nil
}

// Clean removes paths and reports how many were removed before the first
// failure.
func (b *Builder) Clean(paths []string) (int, error) {
	for i, path := range paths {
		if err := b.fs.Remove(path); err != nil {
			return i, apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to remove generated header", err).
				WithModule("app").
				WithOperation("Clean").
				WithField("path", path)
		}
		b.logger.Debug("Removed %s", path)
	}
	return len(paths), nil
}
