package site

import (
	"os"
	"path/filepath"

	"github.com/annieversary/sorg/internal/errors"
)

// Folders creates one directory per page of the tree under root
// (normally the static directory), so every page has a place to keep its
// assets. Pages with the "index" slug reuse their parent's directory.
// With gitignore set, each created directory gets an empty .gitignore so
// the otherwise-empty tree survives a git checkout; existing files are
// never overwritten.
func Folders(tree *Page, root string, gitignore bool) error {
	dir := root
	if tree.Info.Slug != "index" {
		dir = filepath.Join(root, tree.Info.Slug)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "creating folder for %q", tree.Info.Title)
	}

	if gitignore {
		path := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, nil, 0o644); err != nil {
				return errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "creating %s", path)
			}
		}
	}

	for _, child := range tree.SortedChildren() {
		if err := Folders(child, dir, gitignore); err != nil {
			return err
		}
	}
	return nil
}
