// Package blob implements the document store on the local filesystem.
// Path uniqueness (timestamp prefixing) is handled upstream by the draft
// store.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inficare/inficare/config"
	"github.com/inficare/inficare/internal/draft"
)

type Local struct {
	basePath string
	baseURL  string
}

func NewLocal(cfg config.StorageConfig) *Local {
	return &Local{
		basePath: cfg.BasePath,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

var _ draft.BlobStore = (*Local)(nil)

func (l *Local) Put(ctx context.Context, path string, content io.Reader) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("creating blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("writing blob: %w", err)
	}

	return l.baseURL + "/" + path, nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	full := filepath.Join(l.basePath, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}
