package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/aieval/schema"
)

// SelectFiles walks root and returns the absolute paths of every eligible code file.
// A file is eligible when it is a non-empty regular file with an allow-listed extension
// that is not excluded, and no path segment below root is hidden or an excluded folder.
// Paths come back in lexical order. Any walk or stat failure aborts the selection.
func SelectFiles(root string, excludeExts, excludeFolders []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	skipExt := make(map[string]struct{}, len(excludeExts))
	for _, ext := range excludeExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		skipExt[ext] = struct{}{}
	}

	skipFolder := make(map[string]struct{}, len(schema.DefaultExcludedFolders)+len(excludeFolders))
	for _, name := range schema.DefaultExcludedFolders {
		skipFolder[name] = struct{}{}
	}
	for _, name := range excludeFolders {
		skipFolder[name] = struct{}{}
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == absRoot {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if isExcludedSegment(name, skipFolder) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcludedSegment(name, skipFolder) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := schema.CodeExtensions[ext]; !ok {
			return nil
		}
		if _, ok := skipExt[ext]; ok {
			return nil
		}

		// Stat follows symlinks so linked files are judged by their target.
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil // dangling symlink
			}
			return fmt.Errorf("cannot stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() || info.Size() == 0 {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absRoot, err)
	}

	return files, nil
}

// isExcludedSegment reports whether a single path segment hides everything below it.
func isExcludedSegment(name string, skipFolder map[string]struct{}) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := skipFolder[name]
	return ok
}
