package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

type ScanOptions struct {
	Root          string
	Targets       map[string]TargetDef
	MaxDepth      int
	SkipDirs      map[string]struct{}
	ProgressEvery uint64
}

func defaultSkipDirs() map[string]struct{} {
	return map[string]struct{}{
		".git": {},
		".hg":  {},
		".svn": {},
	}
}

type Scanner struct {
	fs    afero.Fs
	opts  ScanOptions
	sizer SizeFunc
	log   zerolog.Logger
}

func NewScanner(fs afero.Fs, opts ScanOptions, sizer SizeFunc, log zerolog.Logger) *Scanner {
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	if sizer == nil {
		sizer = walkSize(fs)
	}
	return &Scanner{fs: fs, opts: opts, sizer: sizer, log: log}
}

// Run walks the root once. It emits ScanStarted first and ScanFinished last,
// with ScanProgress every ProgressEvery entries and one ScanFound per target
// directory in between. A failing emit stops the walk.
func (s *Scanner) Run(ctx context.Context, emit func(Event) error) error {
	start := time.Now()
	if err := emit(ScanStarted{Root: s.opts.Root}); err != nil {
		return err
	}
	s.log.Info().Str("root", s.opts.Root).Int("targets", len(s.opts.Targets)).Msg("scan started")

	var (
		warnings  []string
		visited   uint64
		found     uint64
		lastFound string
		emitErr   error
	)

	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		s.log.Warn().Msg(msg)
	}

	if info, err := s.fs.Stat(s.opts.Root); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("scan: %s is not a directory", s.opts.Root)
		}
		s.log.Error().Err(err).Msg("scan root unusable")
		return emit(ScanFinished{Elapsed: time.Since(start), Err: err})
	}

	walkErr := afero.Walk(s.fs, s.opts.Root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			warn("unreadable: %s: %v", path, err)
			return nil
		}
		if path == s.opts.Root {
			return nil
		}

		visited++
		if visited%s.opts.ProgressEvery == 0 {
			if emitErr = emit(ScanProgress{Visited: visited}); emitErr != nil {
				return emitErr
			}
		}

		if !info.IsDir() {
			return nil
		}
		if _, skip := s.opts.SkipDirs[info.Name()]; skip {
			return filepath.SkipDir
		}
		if lastFound != "" && isWithin(lastFound, path) {
			return filepath.SkipDir
		}
		rel, relErr := filepath.Rel(s.opts.Root, path)
		if relErr != nil {
			rel = path
		}
		if s.opts.MaxDepth > 0 && relativeDepth(rel) > s.opts.MaxDepth {
			return filepath.SkipDir
		}

		def, ok := s.opts.Targets[info.Name()]
		if !ok {
			return nil
		}
		size, sizeErr := s.sizer(ctx, path)
		if sizeErr != nil {
			warn("size unavailable: %s: %v", path, sizeErr)
			size = 0
		}
		lastFound = path
		found++
		if emitErr = emit(ScanFound{
			Path:     path,
			RelPath:  rel,
			Target:   def.Name,
			Category: def.Category,
			Size:     size,
		}); emitErr != nil {
			return emitErr
		}
		return filepath.SkipDir
	})

	if emitErr != nil {
		s.log.Error().Err(emitErr).Msg("scan aborted")
		return emitErr
	}
	if errors.Is(walkErr, context.Canceled) {
		walkErr = nil
	}

	elapsed := time.Since(start)
	s.log.Info().
		Uint64("visited", visited).
		Uint64("found", found).
		Dur("elapsed", elapsed).
		Msg("scan finished")

	return emit(ScanFinished{
		Visited:  visited,
		Found:    found,
		Warnings: warnings,
		Elapsed:  elapsed,
		Err:      walkErr,
	})
}

// isWithin reports whether child lies strictly below parent, comparing whole
// path components.
func isWithin(parent, child string) bool {
	if parent == "" || child == parent {
		return false
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(child, prefix)
}

func relativeDepth(relPath string) int {
	trimmed := strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	if trimmed == "." || trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "/")
}
