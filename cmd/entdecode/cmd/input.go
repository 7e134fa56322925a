package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// readLimited reads all of r, failing if it holds more than limit bytes.
func readLimited(r io.Reader, name string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes (see [decode] max_input_bytes)", name, limit)
	}
	return data, nil
}

// openInput opens a named file, or stdin when path is "-".
func openInput(stdin io.Reader, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

// readInputFile reads a named file, or stdin when path is "-".
func readInputFile(stdin io.Reader, path string, limit int64) ([]byte, error) {
	f, err := openInput(stdin, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := path
	if path == "-" {
		name = "stdin"
	}
	return readLimited(f, name, limit)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
