// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce groups the events of one save, which editors often split into
// several writes.
const debounce = 100 * time.Millisecond

// watchSet tells which changed files to recompile: the files named on the
// command line and the material files of the directories named on it.
type watchSet struct {
	files map[string]bool
	dirs  map[string]bool
}

func newWatchSet(args []string) (*watchSet, error) {
	ws := &watchSet{files: make(map[string]bool), dirs: make(map[string]bool)}
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			ws.dirs[filepath.Clean(arg)] = true
		} else {
			ws.files[filepath.Clean(arg)] = true
		}
	}
	return ws, nil
}

// watchDirs returns the directories to subscribe to. Files are watched
// through their directory so that editors replacing them are seen.
func (ws *watchSet) watchDirs() []string {
	var dirs []string
	for d := range ws.dirs {
		dirs = append(dirs, d)
	}
	for f := range ws.files {
		dirs = append(dirs, filepath.Dir(f))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func (ws *watchSet) matches(path string) bool {
	path = filepath.Clean(path)
	if ws.files[path] {
		return true
	}
	return ws.dirs[filepath.Dir(path)] && isMaterialFile(path)
}

// watch compiles the inputs, then recompiles the ones that change until
// ctx is done. Compilation failures are reported and do not stop watching.
func (c *compiler) watch(ctx context.Context, args []string) error {
	ws, err := newWatchSet(args)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dirs := ws.watchDirs()
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}

	if err := c.compileInputs(ctx, args); err != nil && !errors.Is(err, errReported) {
		return err
	}
	c.log.Info("watching", zap.Strings("dirs", dirs))

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !ws.matches(ev.Name) {
				continue
			}
			c.log.Debug("changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)

			err := c.compileFiles(ctx, paths)
			if ctx.Err() != nil {
				return nil
			}
			if err != nil && !errors.Is(err, errReported) {
				return err
			}
		}
	}
}
