// Package csvfile stores student records in the flat comma-separated file
// the application has always used (data_mahasiswa.csv).
//
// Every save rewrites the whole file. The new content goes to a temporary
// file in the same directory first, is synced, and is then renamed over the
// old one, so a reader never sees a half-written file.
package csvfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

func init() {
	storage.Register(storage.DriverCSV, func(path string) (storage.Backend, error) {
		return New(path)
	})
}

// File is the flat-file implementation of storage.Backend.
type File struct {
	path string
}

// New returns a File backend for path. The file itself is created by the
// first Load if it does not exist.
func New(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("csvfile.New: empty path")
	}
	return &File{path: path}, nil
}

// Name implements storage.Backend.
func (f *File) Name() string { return storage.DriverCSV }

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Load reads and decodes the file, creating it with only the header when
// it is missing.
func (f *File) Load(ctx context.Context) (codec.Result, error) {
	if err := ctx.Err(); err != nil {
		return codec.Result{}, err
	}

	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := f.Save(ctx, nil); err != nil {
			return codec.Result{}, fmt.Errorf("csvfile.Load: create: %w", err)
		}
		return codec.Result{Records: make([]types.Student, 0)}, nil
	}
	if err != nil {
		return codec.Result{}, fmt.Errorf("csvfile.Load: open: %w", err)
	}
	defer file.Close()

	res, err := codec.Decode(bufio.NewReader(file))
	if err != nil {
		return codec.Result{}, fmt.Errorf("csvfile.Load: %w", err)
	}
	return res, nil
}

// Save rewrites the file with records.
func (f *File) Save(ctx context.Context, records []types.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csvfile.Save: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csvfile.Save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if err := codec.Encode(w, records); err != nil {
		tmp.Close()
		return fmt.Errorf("csvfile.Save: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("csvfile.Save: flush: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("csvfile.Save: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvfile.Save: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("csvfile.Save: chmod: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("csvfile.Save: rename: %w", err)
	}
	return nil
}

// Close implements storage.Backend. A File holds no open handles.
func (f *File) Close() error { return nil }
