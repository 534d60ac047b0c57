// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package instrumentation buffers per-run debug text files and writes them
// into a time-tagged run directory.
package instrumentation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrDuplicateName = errors.New("instrumentation: debug file already registered")
	ErrClosed        = errors.New("instrumentation: registry closed")
)

// Layouts of the run directory and of the per-save file suffix.
const (
	RunDirLayout     = "2006.01.02__15.04"
	FileSuffixLayout = "_15.04.05"
)

// Registry owns the debug files of one run.
type Registry struct {
	mu     sync.Mutex
	runDir string
	start  time.Time
	now    func() time.Time
	log    *zap.Logger
	files  []*DebugFile
	closed bool
}

// NewRegistry creates <baseDir>/<date__time> for this run.
func NewRegistry(baseDir string, log *zap.Logger) (*Registry, error) {
	return newRegistry(baseDir, log, time.Now)
}

func newRegistry(baseDir string, log *zap.Logger, now func() time.Time) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := now()
	runDir := filepath.Join(baseDir, start.Format(RunDirLayout))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &Registry{runDir: runDir, start: start, now: now, log: log}, nil
}

// RunDir is the directory files are saved into.
func (r *Registry) RunDir() string { return r.runDir }

// Open registers a new debug file. With timestamp set, every line is
// prefixed with the seconds elapsed since the registry was created and the
// header gains a "Time" column.
func (r *Registry) Open(name string, timestamp bool, header string) (*DebugFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	for _, f := range r.files {
		if f.name == name {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	f := &DebugFile{reg: r, name: name, timestamp: timestamp, header: header}
	r.files = append(r.files, f)
	return f, nil
}

// Save writes every file's buffered lines to disk and clears the buffers.
// Each save goes to <name>_<hh.mm.ss>.txt; a file with nothing buffered is
// skipped.
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save()
}

func (r *Registry) save() error {
	suffix := r.now().Format(FileSuffixLayout)

	var errs []error
	written := 0
	for _, f := range r.files {
		lines := f.drain()
		if len(lines) == 0 {
			continue
		}
		path := filepath.Join(r.runDir, f.name+suffix+".txt")
		if err := writeLines(path, f.headerLine(), lines); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", f.name, err))
			continue
		}
		written++
		r.log.Debug("debug file saved", zap.String("path", path), zap.Int("lines", len(lines)))
	}
	if written > 0 {
		r.log.Info("debug files saved", zap.Int("files", written), zap.String("dir", r.runDir))
	}
	return errors.Join(errs...)
}

// Close saves pending data and rejects further use.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.save()
}

func (r *Registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Registry) elapsed() float64 {
	return r.now().Sub(r.start).Seconds()
}

// writeLines appends to path. The header goes only into a new file, so two
// saves within the same second share one file.
func writeLines(path, header string, lines []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	w := bufio.NewWriter(f)
	if header != "" && info.Size() == 0 {
		fmt.Fprintln(w, header)
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DebugFile buffers lines until the registry saves them.
type DebugFile struct {
	reg       *Registry
	name      string
	timestamp bool
	header    string

	mu    sync.Mutex
	lines []string
}

func (f *DebugFile) Name() string { return f.name }

// Write buffers one line. Lines written after the registry is closed are dropped.
func (f *DebugFile) Write(line string) {
	if f.reg.isClosed() {
		return
	}
	if f.timestamp {
		line = fmt.Sprintf("%.3f\t%s", f.reg.elapsed(), line)
	}
	f.mu.Lock()
	f.lines = append(f.lines, line)
	f.mu.Unlock()
}

// Writef formats and buffers one line.
func (f *DebugFile) Writef(format string, args ...any) {
	f.Write(fmt.Sprintf(format, args...))
}

// Len is the number of lines waiting to be saved.
func (f *DebugFile) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lines)
}

func (f *DebugFile) drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.lines
	f.lines = nil
	return lines
}

func (f *DebugFile) headerLine() string {
	if f.header == "" || !f.timestamp {
		return f.header
	}
	return "Time\t" + f.header
}
