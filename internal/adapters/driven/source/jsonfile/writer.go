package jsonfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Writer and Factory implement the interfaces.
var (
	_ driven.RecordSink        = (*Writer)(nil)
	_ driven.RecordSinkFactory = Factory{}
)

// Factory creates Writers.
type Factory struct{}

// Create implements driven.RecordSinkFactory.
func (Factory) Create(path string) (driven.RecordSink, error) {
	w, err := Create(path)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Writer writes records as a JSON array, one object per line. Output goes to
// a temporary file that replaces path only on Close.
type Writer struct {
	path string
	tmp  *os.File
	buf  *bufio.Writer
	n    int
}

// Create starts a new array destined for path.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := &Writer{path: path, tmp: tmp, buf: bufio.NewWriter(tmp)}
	if _, err := w.buf.WriteString("["); err != nil {
		_ = w.Abort()
		return nil, err
	}
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(rec domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", w.n, err)
	}
	sep := "\n"
	if w.n > 0 {
		sep = ",\n"
	}
	if _, err := w.buf.WriteString(sep); err != nil {
		return err
	}
	if _, err := w.buf.Write(data); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.n
}

// Close terminates the array and moves the file into place.
func (w *Writer) Close() error {
	if w.tmp == nil {
		return nil
	}
	if _, err := w.buf.WriteString("\n]\n"); err != nil {
		_ = w.Abort()
		return err
	}
	if err := w.buf.Flush(); err != nil {
		_ = w.Abort()
		return err
	}
	name := w.tmp.Name()
	if err := w.tmp.Close(); err != nil {
		w.tmp = nil
		_ = os.Remove(name)
		return err
	}
	w.tmp = nil
	if err := os.Rename(name, w.path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("finalise %s: %w", w.path, err)
	}
	return nil
}

// Abort discards the partial output. The destination is left untouched.
func (w *Writer) Abort() error {
	if w.tmp == nil {
		return nil
	}
	name := w.tmp.Name()
	_ = w.tmp.Close()
	w.tmp = nil
	return os.Remove(name)
}
