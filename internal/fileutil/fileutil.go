// Package fileutil provides file discovery and path-mirroring helpers used
// by the batch orchestrator.
package fileutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverAudio walks root recursively and returns every regular file whose
// extension matches ext (without the leading dot), sorted lexically so batch
// ordering is deterministic.
func DiscoverAudio(root, ext string) ([]string, error) {
	suffix := "." + strings.ToLower(strings.TrimPrefix(ext, "."))
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// MirrorDir maps a source file to its output directory: the file's relative
// directory under root, re-rooted at outputRoot, plus a per-file folder named
// "<stem>_<segmentName>".
func MirrorDir(root, outputRoot, source, segmentName string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Dir(source))
	if err != nil {
		return "", err
	}
	return filepath.Join(outputRoot, rel, Stem(source)+"_"+segmentName), nil
}

// Stem returns the file name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
