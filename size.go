package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/afero"
)

// SizeFunc returns the cumulative size in bytes of the tree at path.
type SizeFunc func(ctx context.Context, path string) (uint64, error)

const (
	sizeMethodWalk = "walk"
	sizeMethodDu   = "du"
)

var errUnknownSizeMethod = errors.New("unknown size method")

func newSizeFunc(method string, fs afero.Fs) (SizeFunc, error) {
	switch method {
	case "", sizeMethodWalk:
		return walkSize(fs), nil
	case sizeMethodDu:
		return duSize(walkSize(fs)), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownSizeMethod, method)
	}
}

// walkSize sums regular file sizes below path without following symlinks.
func walkSize(fs afero.Fs) SizeFunc {
	return func(ctx context.Context, path string) (uint64, error) {
		var size uint64
		err := afero.Walk(fs, path, func(_ string, info os.FileInfo, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				size += uint64(info.Size())
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		return size, nil
	}
}

// duSize asks du(1) for the disk usage in KiB. When du is missing or its
// output cannot be parsed the fallback is used instead.
func duSize(fallback SizeFunc) SizeFunc {
	return func(ctx context.Context, path string) (uint64, error) {
		out, err := exec.CommandContext(ctx, "du", "-sk", path).Output()
		if err != nil {
			return fallback(ctx, path)
		}
		kib, err := parseDuOutput(out)
		if err != nil {
			return fallback(ctx, path)
		}
		return kib * 1024, nil
	}
}

func parseDuOutput(out []byte) (uint64, error) {
	fields := bytes.Fields(out)
	if len(fields) == 0 {
		return 0, errors.New("du: empty output")
	}
	kib, err := strconv.ParseUint(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("du: parse %q: %w", fields[0], err)
	}
	return kib, nil
}
