package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	errEmptyPath     = errors.New("delete: empty path")
	errRelativePath  = errors.New("delete: relative paths are not allowed")
	errRefuseRoot    = errors.New("delete: refusing to delete root")
	errOutsideRoot   = errors.New("delete: path is outside the scan root")
	errSymlinkInPath = errors.New("delete: path crosses a symlink")
)

// Deleter removes directory trees on a goroutine pool. Every entry becomes
// one task that reports Deleting followed by exactly one of Deleted or
// DeleteFailed.
type Deleter struct {
	fs   afero.Fs
	root string
	emit func(Event) error
	pool *ants.Pool
	log  zerolog.Logger
}

// NewDeleter builds the pool. workers <= 0 means one goroutine per entry.
func NewDeleter(fs afero.Fs, root string, workers int, emit func(Event) error, log zerolog.Logger) (*Deleter, error) {
	if workers <= 0 {
		workers = -1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("delete pool: %w", err)
	}
	return &Deleter{fs: fs, root: filepath.Clean(root), emit: emit, pool: pool, log: log}, nil
}

// Delete hands the entries to the pool and returns how many were accepted
// for submission. Submission runs on its own goroutine so a full pool never
// stalls the caller.
func (d *Deleter) Delete(items []Entry) int {
	if len(items) == 0 {
		return 0
	}
	batch := append([]Entry(nil), items...)
	go func() {
		for _, item := range batch {
			if err := d.pool.Submit(func() { d.remove(item) }); err != nil {
				d.log.Error().Err(err).Str("path", item.Path).Msg("delete task rejected")
				d.send(Deleting{Path: item.Path, Size: item.Size})
				d.send(DeleteFailed{Path: item.Path, Size: item.Size, Reason: err.Error()})
			}
		}
	}()
	return len(batch)
}

func (d *Deleter) remove(item Entry) {
	if !d.send(Deleting{Path: item.Path, Size: item.Size}) {
		return
	}
	cleaned, err := validateDeletePath(d.root, item.Path)
	if err == nil {
		err = checkNoSymlinks(d.fs, d.root, cleaned)
	}
	if err == nil {
		err = d.fs.RemoveAll(cleaned)
	}
	if err != nil {
		d.log.Warn().Err(err).Str("path", item.Path).Msg("delete failed")
		d.send(DeleteFailed{Path: item.Path, Size: item.Size, Reason: err.Error()})
		return
	}
	d.log.Info().Str("path", item.Path).Uint64("size", item.Size).Msg("deleted")
	d.send(Deleted{Path: item.Path, Size: item.Size})
}

func (d *Deleter) send(ev Event) bool {
	if err := d.emit(ev); err != nil {
		d.log.Error().Err(err).Msg("delete worker cannot report")
		return false
	}
	return true
}

func (d *Deleter) Running() int { return d.pool.Running() }

func (d *Deleter) Release() { d.pool.Release() }

func validateDeletePath(root, path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		return "", errRelativePath
	}
	if cleaned == root || cleaned == string(filepath.Separator) {
		return "", errRefuseRoot
	}
	if !isWithin(root, cleaned) {
		return "", errOutsideRoot
	}
	return cleaned, nil
}

// checkNoSymlinks refuses a path with a symlink at or below root, so a
// directory swapped for a link after the scan cannot redirect RemoveAll.
// A missing component ends the check and RemoveAll treats it as done.
func checkNoSymlinks(fs afero.Fs, root, path string) error {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, _, err := lstater.LstatIfPossible(current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s", errSymlinkInPath, current)
		}
	}
	return nil
}
