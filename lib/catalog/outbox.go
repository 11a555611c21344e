// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
)

// Outbox is a file drop for routine results. Writes go through a
// temp file and rename, so a reader assembling the next prompt never
// sees a half-written result.
type Outbox struct {
	dir string
}

// NewOutbox creates the outbox directory if needed and returns a
// handle to it.
func NewOutbox(dir string) (*Outbox, error) {
	if dir == "" {
		return nil, fmt.Errorf("outbox directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating outbox directory: %w", err)
	}
	return &Outbox{dir: dir}, nil
}

// Path returns the full path of a named outbox file.
func (o *Outbox) Path(name string) string {
	return filepath.Join(o.dir, name)
}

// Write atomically replaces the named outbox file with content.
func (o *Outbox) Write(name string, content string) error {
	tmpFile, err := os.CreateTemp(o.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp outbox file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing outbox content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp outbox file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting outbox file mode: %w", err)
	}

	if err := os.Rename(tmpPath, o.Path(name)); err != nil {
		return fmt.Errorf("renaming outbox file to %s: %w", o.Path(name), err)
	}

	success = true
	return nil
}
