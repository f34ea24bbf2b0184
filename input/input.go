// Package input checks input files before they reach gonomics fileio, which
// ends the process on a .gz file that is not gzip compressed.
package input

import (
	"os"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/vertgenlab/gonomics/fileio"
)

// Check reports whether path can be opened by fileio.EasyOpen without a fatal
// exit.
func Check(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".gz") && !fileio.IsGzip(f) {
		return &config.Error{Op: "open", Value: path, Err: config.ErrNotGzip}
	}
	return nil
}

// Open checks path and opens it for reading. Compression follows the
// extension.
func Open(path string) (*fileio.EasyReader, error) {
	if err := Check(path); err != nil {
		return nil, err
	}
	return fileio.EasyOpen(path), nil
}

// Lines returns the lines of path that do not start with '#'.
func Lines(path string) ([]string, error) {
	if err := Check(path); err != nil {
		return nil, err
	}
	return fileio.Read(path), nil
}
