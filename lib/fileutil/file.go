package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

func SyncFileName(fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return xerrors.Errorf("failed os.Open %q: %w", fname, err)
	}
	err = f.Sync()
	c_err := f.Close()
	if err != nil {
		return xerrors.Errorf("failed f.Sync %q: %w", fname, err)
	}
	if c_err != nil {
		return xerrors.Errorf("failed f.Close %q: %w", fname, c_err)
	}
	return nil
}

// WriteFileAtomic writes content to temporary file in same directory as
// name and renames it over name, so readers never observe partial file.
func WriteFileAtomic(name string, r io.Reader, perm os.FileMode) (err error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	wf, err := os.CreateTemp(dir, "."+base+".tmp-")
	if err != nil {
		return xerrors.Errorf("failed os.CreateTemp: %w", err)
	}
	tn := wf.Name()
	defer func() {
		if err != nil {
			_ = wf.Close()
			_ = os.Remove(tn)
		}
	}()

	if _, err = io.Copy(wf, r); err != nil {
		return xerrors.Errorf("failed writing %q: %w", tn, err)
	}
	if err = wf.Chmod(perm); err != nil {
		return xerrors.Errorf("failed f.Chmod %q: %w", tn, err)
	}
	// sync to ensure consistency
	if err = wf.Sync(); err != nil {
		return xerrors.Errorf("failed f.Sync %q: %w", tn, err)
	}
	if err = wf.Close(); err != nil {
		return xerrors.Errorf("failed f.Close %q: %w", tn, err)
	}
	if err = os.Rename(tn, name); err != nil {
		return xerrors.Errorf("failed os.Rename: %w", err)
	}
	// persist rename itself
	return SyncFileName(dir)
}
