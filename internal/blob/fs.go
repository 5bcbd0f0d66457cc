package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS guarda cada objeto como archivo dentro de Dir.
type FS struct {
	Dir string
}

func NewFS(dir string) *FS {
	if strings.TrimSpace(dir) == "" {
		dir = "/store"
	}
	return &FS{Dir: dir}
}

func (s *FS) Put(_ context.Context, name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("blob: invalid name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir %s: %w", s.Dir, err)
	}
	p := filepath.Join(s.Dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", p, err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p, nil
	}
	return abs, nil
}

func (s *FS) Delete(_ context.Context, location string) error {
	p, err := s.contain(location)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// contain resuelve location y exige que sea un archivo directo de Dir.
func (s *FS) contain(location string) (string, error) {
	dir, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", err
	}
	p, err := filepath.Abs(location)
	if err != nil {
		return "", err
	}
	if filepath.Dir(p) != dir {
		return "", fmt.Errorf("%w: %s", ErrForeignLocation, location)
	}
	return p, nil
}

// Ping verifica que el directorio exista o pueda crearse.
func (s *FS) Ping(context.Context) error {
	return os.MkdirAll(s.Dir, 0o755)
}
