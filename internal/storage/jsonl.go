package storage

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wikiharvest/wikiharvest/internal/types"
)

// JSONLEmitter writes records as newline-delimited JSON, one object per
// line. Each record is flushed as a whole line before the next begins, so
// an aborted run never leaves a truncated record on the stream.
type JSONLEmitter struct {
	w      *bufio.Writer
	closer io.Closer
	count  int
	logger *slog.Logger
}

// NewJSONLEmitter wraps an arbitrary writer (typically stdout).
func NewJSONLEmitter(w io.Writer, logger *slog.Logger) *JSONLEmitter {
	return &JSONLEmitter{
		w:      bufio.NewWriter(w),
		logger: logger.With("component", "jsonl_emitter"),
	}
}

// NewFileEmitter opens a JSONL emitter on a file path. Path "-" or ""
// means stdout.
func NewFileEmitter(outputPath string, logger *slog.Logger) (*JSONLEmitter, error) {
	if outputPath == "" || outputPath == "-" {
		return NewJSONLEmitter(os.Stdout, logger), nil
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	e := NewJSONLEmitter(f, logger)
	e.closer = f
	return e, nil
}

func (e *JSONLEmitter) Name() string { return "jsonl" }

// Emit writes one record and flushes the line.
func (e *JSONLEmitter) Emit(record *types.ArticleRecord) error {
	line, err := record.ToJSON()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := e.w.Write(line); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	e.count++
	e.logger.Debug("record emitted", "url", record.URL, "total", e.count)
	return nil
}

// Close flushes and closes the underlying file, if any.
func (e *JSONLEmitter) Close() error {
	e.logger.Info("JSONL stream closed", "records", e.count)
	if err := e.w.Flush(); err != nil {
		return err
	}
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}
