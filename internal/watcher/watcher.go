package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pv/singlebundle/internal/logger"
)

// ChangeCallback вызывается, когда содержимое директории изменилось и стабилизировалось
type ChangeCallback func(ctx context.Context)

// Watcher опрашивает выходную директорию сборщика.
// Callback срабатывает, когда отпечаток директории отличается от последнего
// обработанного и не менялся между двумя опросами подряд (сборщик дописал файлы).
type Watcher struct {
	dir      string
	interval time.Duration
	skip     map[string]struct{}
	callback ChangeCallback

	mu        sync.Mutex
	lastSeen  string
	lastFired string
}

// New создаёт watcher. skip - относительные имена, которые не учитываются
// в отпечатке (собственный артефакт комбайнера).
func New(dir string, interval time.Duration, callback ChangeCallback, skip ...string) *Watcher {
	skipSet := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipSet[name] = struct{}{}
	}
	return &Watcher{
		dir:      dir,
		interval: interval,
		skip:     skipSet,
		callback: callback,
	}
}

// MarkProcessed запоминает текущее состояние директории как обработанное
func (w *Watcher) MarkProcessed() error {
	fp, err := Fingerprint(w.dir, w.skip)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.lastSeen = fp
	w.lastFired = fp
	w.mu.Unlock()
	return nil
}

// Run опрашивает директорию до отмены ctx
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := logger.Component("watcher")
	log.Info("Watching build output", "dir", w.dir, "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("Watcher stopped")
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll выполняет опрос и при изменении вызывает callback.
// После callback состояние директории снимается заново: собственные изменения
// пересборки (удалённые исходники) не должны запускать её повторно.
func (w *Watcher) Poll(ctx context.Context) bool {
	if !w.Check() {
		return false
	}
	w.callback(ctx)
	if err := w.MarkProcessed(); err != nil {
		logger.Warn("Failed to snapshot build output", "dir", w.dir, "error", err)
	}
	return true
}

// Check выполняет один опрос и сообщает, нужно ли пересобрать bundle
func (w *Watcher) Check() bool {
	fp, err := Fingerprint(w.dir, w.skip)
	if err != nil {
		logger.Warn("Failed to scan build output", "dir", w.dir, "error", err)
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	stable := fp == w.lastSeen
	w.lastSeen = fp
	if !stable || fp == w.lastFired {
		return false
	}
	w.lastFired = fp
	return true
}

// Fingerprint хэш имён, размеров и времени модификации файлов директории
func Fingerprint(dir string, skip map[string]struct{}) (string, error) {
	var entries []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := skip[rel]; ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, fmt.Sprintf("%s|%d|%d", rel, info.Size(), info.ModTime().UnixNano()))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(entries)
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
