// AngelaMos | 2026
// filestore.go

package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/promptforge/storefront/internal/core"
)

// FileStore resolves deliverable names to readable content.
type FileStore interface {
	Open(name string) (io.ReadSeekCloser, error)
}

// DirStore serves deliverables out of a single directory. Names are
// flattened with filepath.Base so a stored name can never traverse out
// of the directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func (s *DirStore) Open(name string) (io.ReadSeekCloser, error) {
	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return nil, fmt.Errorf("open %q: %w", name, core.ErrInvalidInput)
	}

	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %q: %w", clean, core.ErrNotFound)
		}
		return nil, fmt.Errorf("open %q: %w", clean, err)
	}

	return f, nil
}
