package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below Dir; they are served under BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func (s LocalStore) Put(_ context.Context, key, _ string, body io.Reader) (Object, error) {
	clean := filepath.Clean("/" + key)
	full := filepath.Join(s.Dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return Object{}, fmt.Errorf("create: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(full)
		return Object{}, fmt.Errorf("write: %w", err)
	}
	if err := f.Close(); err != nil {
		return Object{}, err
	}
	rel := strings.TrimPrefix(filepath.ToSlash(clean), "/")
	return Object{URL: strings.TrimRight(s.BaseURL, "/") + "/" + rel, Path: rel}, nil
}
