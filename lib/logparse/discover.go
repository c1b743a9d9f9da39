// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logparse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the file suffixes Discover accepts.
var DefaultExtensions = []string{".log", ".log.zst", ".log.lz4"}

// Discover walks root recursively and returns every regular file whose
// name ends with one of extensions, sorted by path. It returns
// ErrNoLogDirectory if root is missing or not a directory and
// ErrNoLogFiles if nothing matched.
func Discover(root string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoLogDirectory, root)
		}
		return nil, fmt.Errorf("logparse: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoLogDirectory, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		for _, extension := range extensions {
			if strings.HasSuffix(entry.Name(), extension) {
				paths = append(paths, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("logparse: walking %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w under %s (extensions %s)", ErrNoLogFiles, root, strings.Join(extensions, ", "))
	}
	slices.Sort(paths)
	return paths, nil
}
