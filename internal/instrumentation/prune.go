// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package instrumentation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DeleteOldRuns removes run directories under baseDir whose name-encoded
// start time is older than maxAge. Entries that do not parse as a run
// directory are left alone. Returns the removed directory names.
func DeleteOldRuns(baseDir string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var removed []string
	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		started, err := time.ParseInLocation(RunDirLayout, e.Name(), now.Location())
		if err != nil {
			continue
		}
		if now.Sub(started) <= maxAge {
			continue
		}
		if err := os.RemoveAll(filepath.Join(baseDir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, e.Name())
	}
	return removed, errors.Join(errs...)
}
