// Package logexport writes the rendered log buffer to files, on demand or on
// a cron schedule.
package logexport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/logbuffer"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/pkg/clock"
)

// FilePrefix starts every export file name.
const FilePrefix = "edge-cache-"

const (
	fileTimeLayout  = "20060102-150405.000"
	maxNameAttempts = 1000
)

// Result describes one written export.
type Result struct {
	Path    string
	Entries int
	Bytes   int64
}

// Exporter renders a Buffer into timestamped files under a directory.
type Exporter struct {
	buf    *logbuffer.Buffer
	dir    string
	clock  clock.Clock
	logger logging.Logger
}

// NewExporter creates an exporter writing into dir.
func NewExporter(buf *logbuffer.Buffer, dir string, c clock.Clock, logger logging.Logger) *Exporter {
	if c == nil {
		c = clock.RealClock{}
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Exporter{buf: buf, dir: dir, clock: c, logger: logger.Named("log_export")}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes the current buffer contents to a new file. The file appears
// under its final name only once fully written.
func (e *Exporter) Export(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	entries := e.buf.Snapshot()
	text := logbuffer.RenderEntries(entries)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export directory: %w", err)
	}
	stem := FilePrefix + e.clock.Now().UTC().Format(fileTimeLayout)

	tmp, err := os.CreateTemp(e.dir, "."+stem+".*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := tmp.WriteString(text)
	if err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close export: %w", err)
	}
	path, err := e.publish(tmp.Name(), stem)
	if err != nil {
		return Result{}, err
	}

	res := Result{Path: path, Entries: len(entries), Bytes: int64(n)}
	e.logger.Info("Logs exported",
		zap.String("path", res.Path),
		zap.Int("entries", res.Entries),
		zap.Int64("bytes", res.Bytes),
	)
	return res, nil
}

// publish links tmp under the first free name derived from stem. Exports
// within the same millisecond get a numeric suffix; an existing export is
// never replaced.
func (e *Exporter) publish(tmp, stem string) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := stem + ".log"
		if i > 0 {
			name = fmt.Sprintf("%s-%d.log", stem, i)
		}
		path := filepath.Join(e.dir, name)
		err := os.Link(tmp, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("publish export: %w", err)
		}
	}
	return "", fmt.Errorf("publish export: no free file name for %s", stem)
}
