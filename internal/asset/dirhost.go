package asset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pv/singlebundle/internal/logger"
)

// LoadDir читает выходную директорию сборщика в Set.
// Файлы обходятся в лексическом порядке путей, имена - относительные пути через "/".
// Файлы из skip (например, предыдущий bundle.js) пропускаются.
func LoadDir(dir string, skip ...string) (*Set, error) {
	skipSet := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipSet[name] = struct{}{}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	set := NewSet()
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, fmt.Errorf("relative path for %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		if _, ok := skipSet[name]; ok {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		set.Add(Raw(name, data))
	}

	logger.Debug("Loaded build output", "dir", dir, "assets", set.Len())
	return set, nil
}

// DirHost принимает артефакты комбайнера и пишет их в директорию сборки
type DirHost struct {
	Dir string
	// RemoveOriginals удаляет классифицированные исходники после записи артефакта
	RemoveOriginals bool

	emitted []string
}

// NewDirHost создаёт хост для директории
func NewDirHost(dir string, removeOriginals bool) *DirHost {
	return &DirHost{Dir: dir, RemoveOriginals: removeOriginals}
}

// EmitFile записывает артефакт name относительно Dir
func (h *DirHost) EmitFile(name, source string) error {
	target, err := h.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}
	if err := os.WriteFile(target, []byte(source), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	h.emitted = append(h.emitted, name)
	logger.Debug("Emitted artifact", "name", name, "bytes", len(source))
	return nil
}

// Info пишет информационное сообщение хоста
func (h *DirHost) Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Emitted имена записанных артефактов
func (h *DirHost) Emitted() []string {
	return h.emitted
}

// Prune удаляет исходники, вошедшие в артефакт (если включено RemoveOriginals).
// Артефакт с тем же именем, что и исходник, не удаляется.
func (h *DirHost) Prune(output string, names []string) error {
	if !h.RemoveOriginals {
		return nil
	}
	for _, name := range names {
		if name == output {
			continue
		}
		target, err := h.resolve(name)
		if err != nil {
			return err
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
		logger.Debug("Removed original", "name", name)
	}
	return nil
}

func (h *DirHost) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact name %q escapes output dir", name)
	}
	return filepath.Join(h.Dir, clean), nil
}
