// Package assets manages the build output directory and the verbatim
// copy of the static assets into it.
package assets

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/annieversary/sorg/internal/errors"
)

// PrepareBuildDir clears the output directory and recreates it empty.
// Every build starts from scratch; stale pages from removed headings
// must not survive.
func PrepareBuildDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "clearing %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "creating %s", dir)
	}
	return nil
}

// CopyDir copies the tree rooted at src into dst, preserving relative
// paths. A missing src is fine; a site without static assets is valid.
func CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "reading %s", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.CategoryFileSystem, errors.SeverityFatal, "%s is not a directory", src)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "copying %s to %s", src, dst)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
