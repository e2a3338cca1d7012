// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package atomicio writes files so that readers see either nothing or the
// complete contents.
package atomicio

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFrom copies r into a temporary file in the directory of name and
// renames it to name once the copy, and check if non-nil, succeed. check
// receives the complete temporary file. On any failure the temporary file is
// removed and nothing is created at name.
func WriteFrom(name string, r io.Reader, perm fs.FileMode, check func(*os.File) error) (n int64, err error) {
	// Create a temporary file in the same directory to ensure that it's on the
	// same filesystem, which is a requirement for an atomic os.Rename.
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if n, err = io.Copy(f, r); err != nil {
		return n, err
	}
	if err = f.Sync(); err != nil {
		return n, err
	}
	if check != nil {
		if err = check(f); err != nil {
			return n, err
		}
	}
	if err = f.Chmod(perm); err != nil {
		return n, err
	}
	if err = f.Close(); err != nil {
		return n, err
	}

	return n, os.Rename(f.Name(), name)
}
