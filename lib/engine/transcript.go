// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// TranscriptInfo describes a captured transcript file.
type TranscriptInfo struct {
	// Path is the transcript file location.
	Path string `json:"path"`

	// Events is the number of events written.
	Events int64 `json:"events"`

	// Bytes is the uncompressed size of the JSONL stream.
	Bytes int64 `json:"bytes"`

	// Digest is the BLAKE3 hex digest of the uncompressed stream.
	// Two transcripts with the same digest contain the same events.
	Digest string `json:"digest"`

	// Compressed indicates the file on disk is zstd-compressed.
	Compressed bool `json:"compressed,omitempty"`
}

// TranscriptWriter writes engine events as JSONL (one JSON object per
// line) to a transcript file, optionally zstd-compressed. The BLAKE3
// digest and byte count always describe the uncompressed stream, so a
// transcript's identity is independent of how it is stored. Safe for
// concurrent use.
type TranscriptWriter struct {
	path       string
	file       *os.File
	compressor *zstd.Encoder
	encoder    *json.Encoder
	hasher     *blake3.Hasher
	counter    countingWriter
	mutex      sync.Mutex
	closed     bool
	eventCount int64
}

// countingWriter counts bytes passing through to the underlying
// writer.
type countingWriter struct {
	sink  io.Writer
	total int64
}

func (w *countingWriter) Write(data []byte) (int, error) {
	n, err := w.sink.Write(data)
	w.total += int64(n)
	return n, err
}

// NewTranscriptWriter creates (or truncates) a transcript file at
// path. With compress set, events are zstd-compressed on disk; the
// conventional extension is ".jsonl.zst" instead of ".jsonl".
func NewTranscriptWriter(path string, compress bool) (*TranscriptWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating transcript %q: %w", path, err)
	}

	writer := &TranscriptWriter{
		path:   path,
		file:   file,
		hasher: blake3.New(),
	}

	var sink io.Writer = file
	if compress {
		compressor, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		writer.compressor = compressor
		sink = compressor
	}

	// The counter sits on the uncompressed side: it sees the JSONL
	// bytes before any compression, alongside the hasher.
	writer.counter = countingWriter{sink: sink}
	writer.encoder = json.NewEncoder(io.MultiWriter(writer.hasher, &writer.counter))
	// Keep <, >, and & literal so prompt text stays readable.
	writer.encoder.SetEscapeHTML(false)

	return writer, nil
}

// Write appends a single event to the transcript.
func (writer *TranscriptWriter) Write(event Event) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	if writer.closed {
		return fmt.Errorf("transcript %q already closed", writer.path)
	}

	if err := writer.encoder.Encode(event); err != nil {
		return fmt.Errorf("encoding transcript event: %w", err)
	}

	// Sync after each write so events survive a crash mid-run. Under
	// compression the encoder buffers, so per-event durability is
	// traded for ratio and the flush happens at Close.
	if writer.compressor == nil {
		if err := writer.file.Sync(); err != nil {
			return fmt.Errorf("syncing transcript: %w", err)
		}
	}

	writer.eventCount++
	return nil
}

// Close flushes and closes the transcript file. Close is idempotent;
// calling it more than once returns nil.
func (writer *TranscriptWriter) Close() error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	if writer.closed {
		return nil
	}
	writer.closed = true

	if writer.compressor != nil {
		if err := writer.compressor.Close(); err != nil {
			writer.file.Close()
			return fmt.Errorf("closing zstd writer: %w", err)
		}
	}
	if err := writer.file.Sync(); err != nil {
		writer.file.Close()
		return fmt.Errorf("syncing transcript: %w", err)
	}
	return writer.file.Close()
}

// Info returns the transcript metadata for the events written so
// far. Call after Close for the final values.
func (writer *TranscriptWriter) Info() TranscriptInfo {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	digest := writer.hasher.Sum(nil)
	return TranscriptInfo{
		Path:       writer.path,
		Events:     writer.eventCount,
		Bytes:      writer.counter.total,
		Digest:     hex.EncodeToString(digest),
		Compressed: writer.compressor != nil,
	}
}
