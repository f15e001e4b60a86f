package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lu4p/cat"
)

// catFallback runs the secondary extraction strategy (lu4p/cat) over content.
// cat dispatches on the file extension, so the bytes are staged in a temp
// file carrying ext.
func catFallback(content []byte, ext string) (string, error) {
	dir, err := os.MkdirTemp("", "intellidoc-extract-")
	if err != nil {
		return "", fmt.Errorf("fallback temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "doc"+ext)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("fallback temp file: %w", err)
	}
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("fallback extraction: %w", err)
	}
	return text, nil
}
