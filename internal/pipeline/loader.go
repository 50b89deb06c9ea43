package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ydsf-surabaya/aidboard/internal/logging"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

var (
	// ErrNotFound is returned when a program's backing file does not exist.
	ErrNotFound = errors.New("program file not found")
	// ErrUnknownProgram is returned for names outside the fixed program list.
	ErrUnknownProgram = errors.New("unknown program")
)

// ProgramError names the program whose load failed during LoadAll.
type ProgramError struct {
	Program model.Program
	Err     error
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Program, e.Err)
}

func (e *ProgramError) Unwrap() error { return e.Err }

// ProgressFunc is called during loading to report progress.
// current is the number of programs loaded so far, total is the total count.
type ProgressFunc func(current, total int)

// Loader reads program extracts from a data directory.
type Loader struct {
	DataDir string
	// Files maps program names to file names or absolute paths, overriding
	// the program_<name>.csv convention.
	Files   map[string]string
	Options source.Options
	// Cache is optional; nil disables caching.
	Cache    DatasetCache
	Logger   *log.Logger
	Progress ProgressFunc
}

// NewLoader returns a Loader for dataDir with the default CSV options.
func NewLoader(dataDir string) *Loader {
	return &Loader{DataDir: dataDir, Options: source.DefaultOptions()}
}

// logger prefers a request-scoped logger carried by ctx over l.Logger.
func (l *Loader) logger(ctx context.Context) *log.Logger {
	return logging.FromContext(ctx, l.Logger)
}

// Scan reports the expected location and presence of every program extract.
func (l *Loader) Scan() []source.ProgramFile {
	return source.ScanDir(l.DataDir, l.Files)
}

// Path returns the backing file path for a program.
func (l *Loader) Path(p model.Program) string {
	return source.ResolvePath(l.DataDir, p, l.Files)
}

// LoadProgram reads one program's extract. A missing file yields an error
// matching ErrNotFound; a file with only a header yields an empty dataset.
func (l *Loader) LoadProgram(ctx context.Context, p model.Program) (*model.Dataset, error) {
	canon, ok := model.ParseProgram(string(p))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, p)
	}
	p = canon
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.Path(p)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	lg := l.logger(ctx)
	mtime, size := info.ModTime().UnixNano(), info.Size()
	fingerprint := l.Options.Fingerprint(p)
	if l.Cache != nil {
		if ds, ok := l.Cache.Get(path, fingerprint, mtime, size); ok {
			lg.Debug("cache hit", "program", p, "records", ds.Len())
			return ds, nil
		}
	}

	start := time.Now()
	pf := source.ProgramFile{Program: p, Path: path, Exists: true, Size: size}
	result := source.ParseFile(pf, l.Options)
	if result.Err != nil {
		if errors.Is(result.Err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("parsing %s: %w", path, result.Err)
	}

	lg.Debug("parsed extract",
		"program", p,
		"records", result.Dataset.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	if result.Coerced > 0 {
		lg.Warn("non-numeric values treated as missing", "program", p, "cells", result.Coerced)
	}

	if l.Cache != nil {
		if err := l.Cache.Put(path, fingerprint, mtime, size, result.Dataset); err != nil {
			lg.Warn("cache write failed", "program", p, "err", err)
		}
	}
	return result.Dataset, nil
}

// LoadAll loads every listed program (all programs when none are given) and
// concatenates them in the order given. If any program fails to load the
// combined dataset is undefined: LoadAll returns an empty dataset together
// with a *ProgramError for the first failure.
func (l *Loader) LoadAll(ctx context.Context, programs ...model.Program) (*model.Dataset, error) {
	if len(programs) == 0 {
		programs = model.Programs
	}

	parts := make([]*model.Dataset, len(programs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runtime.GOMAXPROCS(0), 1))
	for i, p := range programs {
		g.Go(func() error {
			ds, err := l.LoadProgram(gctx, p)
			if err != nil {
				return &ProgramError{Program: p, Err: err}
			}
			parts[i] = ds
			n := done.Add(1)
			if l.Progress != nil {
				l.Progress(int(n), len(programs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &model.Dataset{}, err
	}

	return Combine(parts...), nil
}

// Combine unions datasets: columns in first-seen order, records in argument
// order. The inputs are not modified.
func Combine(parts ...*model.Dataset) *model.Dataset {
	out := &model.Dataset{}
	seen := make(map[string]struct{})
	total := 0
	for _, ds := range parts {
		if ds == nil {
			continue
		}
		for _, c := range ds.Columns {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out.Columns = append(out.Columns, c)
			}
		}
		total += len(ds.Records)
	}

	out.Records = make([]model.Record, 0, total)
	for _, ds := range parts {
		if ds != nil {
			out.Records = append(out.Records, ds.Records...)
		}
	}
	return out
}
