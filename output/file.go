// Package output writes result files so that a failed run never leaves a
// partial file under the requested name.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vertgenlab/gonomics/fileio"
)

// Stdout is accepted as an output name and writes straight to standard out.
const Stdout = "stdout"

// File buffers writes into a hidden sibling of the target and renames it into
// place on Commit. Compression follows the target's extension. Standard out
// is flushed on Commit and never closed.
type File struct {
	path   string
	tmp    string
	w      io.Writer
	finish func() error
	closed bool
}

// Create opens a new output for path. The parent directory must exist.
func Create(path string) (*File, error) {
	if path == Stdout {
		bw := bufio.NewWriter(os.Stdout)
		return &File{path: path, w: bw, finish: bw.Flush}, nil
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("creating %s: %s is not a directory", path, dir)
	}
	tmp := filepath.Join(dir, ".partial."+filepath.Base(path))
	ew := fileio.EasyCreate(tmp)
	return &File{path: path, tmp: tmp, w: ew, finish: ew.Close}, nil
}

func (f *File) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Path is the final name of the file.
func (f *File) Path() string {
	return f.path
}

// Commit flushes the data and moves it to its final name.
func (f *File) Commit() error {
	if f.closed {
		return fmt.Errorf("%s: already closed", f.path)
	}
	f.closed = true
	if err := f.finish(); err != nil {
		f.remove()
		return fmt.Errorf("closing %s: %w", f.path, err)
	}
	if f.tmp == "" {
		return nil
	}
	if err := os.Rename(f.tmp, f.path); err != nil {
		f.remove()
		return fmt.Errorf("committing %s: %w", f.path, err)
	}
	return nil
}

// Abort discards everything written. It is a no-op after Commit, so it can
// be deferred right after Create.
func (f *File) Abort() {
	if f.closed {
		return
	}
	f.closed = true
	if f.tmp == "" {
		return
	}
	f.finish()
	f.remove()
}

func (f *File) remove() {
	if f.tmp != "" {
		os.Remove(f.tmp)
	}
}
