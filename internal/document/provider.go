// Package document resolves row identifiers to their source text.
package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/confield/confield/internal/contract"
)

// TextProvider resolves a row id to its raw source text. The second return
// value is false when the row has no usable text: a missing file and a
// blank-only file are deliberately indistinguishable.
type TextProvider interface {
	Text(id int64) (string, bool, error)
}

// DirProvider reads <dir>/<id>.txt files produced by the upstream document
// text extractor.
type DirProvider struct {
	dir string
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir}
}

// Text reads the text file for a row. Whitespace-only content reports
// absent so that no extraction is attempted against empty evidence.
func (p *DirProvider) Text(id int64) (string, bool, error) {
	path := filepath.Join(p.dir, fmt.Sprintf("%d.txt", id))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	if !contract.HasValue(text) {
		return "", false, nil
	}
	return text, true, nil
}

// Path returns the file path a row id resolves to. Used for skip reporting.
func (p *DirProvider) Path(id int64) string {
	return filepath.Join(p.dir, fmt.Sprintf("%d.txt", id))
}
