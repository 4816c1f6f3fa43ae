package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// nameCache guarda el último trainer usado, un nombre por archivo.
type nameCache struct {
	path string
}

func defaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "petchat", "trainer")
}

func newNameCache(path string) *nameCache {
	if strings.TrimSpace(path) == "" {
		path = defaultCachePath()
	}
	return &nameCache{path: path}
}

// Load devuelve "" si no hay nada guardado o no se puede leer.
func (c *nameCache) Load() string {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (c *nameCache) Save(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.path, []byte(name+"\n"), 0o600)
}

func (c *nameCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
