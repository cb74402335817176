package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic renders into memory and then replaces path in one rename,
// so readers never observe a partially written file.
func writeAtomic(path string, render func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
