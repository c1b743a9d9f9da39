// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logparse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/pbacbench/lib/digest"
	"github.com/bureau-foundation/pbacbench/lib/event"
)

// Options configures Load. The zero value is usable.
type Options struct {
	// Separator joins fields within a line. Defaults to
	// DefaultSeparator.
	Separator string

	// Extensions selects which files under the root are logs.
	// Defaults to DefaultExtensions.
	Extensions []string

	// Workers bounds how many files are parsed concurrently. Defaults
	// to GOMAXPROCS.
	Workers int

	// Logger receives progress messages. Defaults to a discard logger.
	Logger *slog.Logger
}

// Collection is the merged content of every log in one run.
type Collection struct {
	// Files in path order.
	Files []*File

	// Method is the purpose-management method declared by the logs,
	// or "" if none declared one.
	Method string

	// Events from every file, ordered by event.Less.
	Events []event.Event
}

// CPU returns every CPU resource sample across files.
func (c *Collection) CPU() []ResourceSample {
	var samples []ResourceSample
	for _, file := range c.Files {
		samples = append(samples, file.CPU...)
	}
	return samples
}

// Memory returns every memory resource sample across files.
func (c *Collection) Memory() []ResourceSample {
	var samples []ResourceSample
	for _, file := range c.Files {
		samples = append(samples, file.Memory...)
	}
	return samples
}

// Load discovers the logs under root, parses them concurrently, and
// merges them. Parsing stops at the first fatal error.
func Load(ctx context.Context, root string, options Options) (*Collection, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	paths, err := Discover(root, options.Extensions)
	if err != nil {
		return nil, err
	}
	logger.Info("parsing logs", "root", root, "files", len(paths), "workers", workers)

	files := make([]*File, len(paths))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for index, path := range paths {
		group.Go(func() error {
			if err := groupContext.Err(); err != nil {
				return err
			}
			file, err := ReadFile(path, options.Separator)
			if err != nil {
				return err
			}
			logger.Debug("parsed log",
				"path", path,
				"lines", file.Lines,
				"events", len(file.Events),
				"digest", file.Digest.Short(),
			)
			files[index] = file
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	collection, err := Merge(files)
	if err != nil {
		return nil, err
	}
	logger.Info("logs merged",
		"events", len(collection.Events),
		"method", collection.Method,
	)
	return collection, nil
}

// ReadFile opens, decompresses, parses, and fingerprints one log file.
func ReadFile(path, separator string) (*File, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, &Error{Cause: CauseRead, Path: path, Err: err}
	}
	defer handle.Close()

	hasher := digest.NewWriter()
	raw := io.TeeReader(handle, hasher)
	reader, release, err := decompress(raw, CompressionFor(path))
	if err != nil {
		return nil, &Error{Cause: CauseRead, Path: path, Err: err}
	}
	defer release()

	file, err := Parse(path, reader, separator)
	if err != nil {
		return nil, err
	}
	// A decoder may stop before the end of its input (trailing frames
	// or padding). The digest covers the whole file.
	if _, err := io.Copy(io.Discard, raw); err != nil {
		return nil, &Error{Cause: CauseRead, Path: path, Err: err}
	}
	file.Digest = hasher.Sum()
	return file, nil
}

// Merge combines parsed files. Files must be in a deterministic order
// (Load uses path order). Every file that declares a method must
// declare the same one.
func Merge(files []*File) (*Collection, error) {
	collection := &Collection{Files: files}

	methodSource := ""
	total := 0
	for _, file := range files {
		total += len(file.Events)
		if file.Method == "" {
			continue
		}
		if collection.Method == "" {
			collection.Method = file.Method
			methodSource = file.Path
			continue
		}
		if file.Method != collection.Method {
			return nil, &Error{
				Cause: CauseConflictingMethod,
				Path:  file.Path,
				Err: fmt.Errorf("method %q conflicts with %q declared in %s",
					file.Method, collection.Method, methodSource),
			}
		}
	}

	collection.Events = make([]event.Event, 0, total)
	for _, file := range files {
		collection.Events = append(collection.Events, file.Events...)
	}
	slices.SortStableFunc(collection.Events, event.Compare)
	return collection, nil
}
