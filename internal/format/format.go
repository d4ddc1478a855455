// Package format provides file and directory formatting for DOT files.
package format

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/pplang/pplang/ppconfig"
	"github.com/pplang/pplang/printer"
)

// Reader formats DOT source from r and writes the result to w. Diagnostics are written to
// diagW; pass nil to discard them.
func Reader(r io.Reader, w io.Writer, cfg ppconfig.Configuration, diagW io.Writer) error {
	p := printer.New(r, w, cfg, diagW)
	return p.Print()
}

// Dir formats all DOT files (.dot, .gv) in a directory tree.
func Dir(root string, cfg ppconfig.Configuration, diagW io.Writer) error {
	var result *multierror.Error
	if err := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, fsErr error) error {
		if fsErr != nil {
			return fsErr
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(d.Name()); ext != ".dot" && ext != ".gv" {
			return nil
		}

		file := filepath.Join(root, path)
		if err := File(file, cfg, diagW); err != nil {
			result = multierror.Append(result, err)
		}
		return nil
	}); err != nil {
		return err
	}
	return result.ErrorOrNil()
}

// File formats a single DOT file in-place. Diagnostics are written to diagW; pass nil to
// discard them.
func File(path string, cfg ppconfig.Configuration, diagW io.Writer) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %v", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %v", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for atomic rename: %v", err)
	}

	var success bool
	tmpPath := tmp.Name()
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if perm := fi.Mode().Perm(); perm != 0o600 {
		if err := tmp.Chmod(perm); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to set file mode: %v", err)
		}
	}

	p := printer.New(bytes.NewReader(src), tmp, cfg, diagW)
	if err := p.Print(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s:%s", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %v", err)
	}

	success = true
	return nil
}
