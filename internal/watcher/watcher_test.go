package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFingerprintChanges(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.js", "a")

	fp1, err := Fingerprint(dir, nil)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	fp2, _ := Fingerprint(dir, nil)
	if fp1 != fp2 {
		t.Error("fingerprint must be stable without changes")
	}

	write(t, dir, "b.css", "b")
	fp3, _ := Fingerprint(dir, nil)
	if fp3 == fp1 {
		t.Error("fingerprint must change when a file is added")
	}
}

func TestFingerprintSkipsOutput(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.js", "a")
	skip := map[string]struct{}{"bundle.js": {}}

	before, _ := Fingerprint(dir, skip)
	write(t, dir, "bundle.js", "combined")
	after, _ := Fingerprint(dir, skip)

	if before != after {
		t.Error("skipped files must not affect the fingerprint")
	}
}

func TestFingerprintMissingDir(t *testing.T) {
	if _, err := Fingerprint(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestCheckWaitsForStableOutput(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.js", "a")

	w := New(dir, time.Hour, func(context.Context) {}, "bundle.js")
	if err := w.MarkProcessed(); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}

	if w.Check() {
		t.Error("no change: Check must be false")
	}

	write(t, dir, "b.js", "b")
	if w.Check() {
		t.Error("first poll after change: output not stable yet")
	}
	if !w.Check() {
		t.Error("second poll with same state: Check must be true")
	}
	if w.Check() {
		t.Error("already processed: Check must be false")
	}

	write(t, dir, "bundle.js", "combined")
	if w.Check() || w.Check() {
		t.Error("writing the skipped artifact must not trigger a rebuild")
	}
}

func TestCheckMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), time.Hour, func(context.Context) {})
	if w.Check() {
		t.Error("scan error must not trigger a rebuild")
	}
}

func TestRunCallsCallbackAndStops(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.js", "a")

	var calls atomic.Int32
	fired := make(chan struct{}, 1)
	w := New(dir, 10*time.Millisecond, func(context.Context) {
		calls.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// без MarkProcessed первое стабильное состояние считается новым
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not called")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 callback, got %d", calls.Load())
	}
}

func TestPollIgnoresCallbackChanges(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.js", "a")
	write(t, dir, "b.css", "b")

	calls := 0
	w := New(dir, time.Hour, func(context.Context) {
		calls++
		// пересборка удаляет исходники
		_ = os.Remove(filepath.Join(dir, "a.js"))
		_ = os.Remove(filepath.Join(dir, "b.css"))
	})

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		w.Poll(ctx)
	}
	if calls != 1 {
		t.Errorf("expected 1 callback, got %d", calls)
	}

	write(t, dir, "c.js", "c")
	w.Poll(ctx)
	if !w.Poll(ctx) {
		t.Error("a change made after the callback must still be picked up")
	}
	if calls != 2 {
		t.Errorf("expected 2 callbacks, got %d", calls)
	}
}
