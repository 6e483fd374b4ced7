// Package logwatch prints and follows the workflow engine's log file.
package logwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Print copies the whole log file at path to w
func Print(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Follow prints the log file at path and then keeps streaming bytes appended
// to it until ctx is cancelled. The file may not exist yet; it is picked up
// when created. A file recreated under the same name (log rotation) is
// reopened from the start.
func Follow(ctx context.Context, w io.Writer, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file, so creation and rotation are seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	t := &tail{path: path, w: w}
	defer t.close()

	if err := t.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				t.close()
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := t.drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// tail tracks the currently open log file; reads continue from the last offset
type tail struct {
	path string
	w    io.Writer
	f    *os.File
}

func (t *tail) drain() error {
	if t.f == nil {
		f, err := os.Open(t.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		t.f = f
	}
	_, err := io.Copy(t.w, t.f)
	return err
}

func (t *tail) close() {
	if t.f != nil {
		t.f.Close()
		t.f = nil
	}
}
