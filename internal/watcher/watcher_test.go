package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type changeLog struct {
	mu    sync.Mutex
	paths []string
}

func (c *changeLog) record(path string) {
	c.mu.Lock()
	c.paths = append(c.paths, path)
	c.mu.Unlock()
}

func (c *changeLog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "catalog.csv")
	if err := writeFile(target, "image,description\n"); err != nil {
		t.Fatal(err)
	}

	var log changeLog
	w, err := NewWatcher(target, log.record, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(target, "image,description\ncoat.jpg,wool coat\n"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if log.count() < 1 {
		t.Errorf("expected at least one reload callback, got %d", log.count())
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	for _, p := range log.paths {
		if filepath.Clean(p) != filepath.Clean(target) {
			t.Errorf("callback path = %q, want %q", p, target)
		}
	}
}

func TestWatcher_DebounceCollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "catalog.csv")
	if err := writeFile(target, "image,description\n"); err != nil {
		t.Fatal(err)
	}

	var log changeLog
	w, err := NewWatcher(target, log.record, WithDebounce(150*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := writeFile(target, "image,description\nrow.jpg,row\n"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	if got := log.count(); got != 1 {
		t.Errorf("expected one collapsed reload, got %d", got)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "catalog.csv")
	if err := writeFile(target, "image,description\n"); err != nil {
		t.Fatal(err)
	}

	var log changeLog
	w, err := NewWatcher(target, log.record, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "other.csv"), "unrelated\n"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if got := log.count(); got != 0 {
		t.Errorf("sibling file change should not reload, got %d callbacks", got)
	}
}

func TestWatcher_ReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "catalog.csv")
	if err := writeFile(target, "image,description\n"); err != nil {
		t.Fatal(err)
	}

	var log changeLog
	w, err := NewWatcher(target, log.record, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Exporters typically write a temp file and rename it over the target.
	staging := filepath.Join(dir, "catalog.csv.tmp")
	if err := writeFile(staging, "image,description\nnew.jpg,new row\n"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(staging, target); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if log.count() < 1 {
		t.Errorf("expected a reload after replace-by-rename, got %d", log.count())
	}
}

func TestWatcher_RemoveCancelsPendingReload(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "catalog.csv")
	if err := writeFile(target, "image,description\n"); err != nil {
		t.Fatal(err)
	}

	var log changeLog
	w, err := NewWatcher(target, log.record, WithDebounce(250*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(target, "image,description\nrow.jpg,row\n"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)

	if got := log.count(); got != 0 {
		t.Errorf("deleting the file should cancel the pending reload, got %d callbacks", got)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "catalog.csv")
	if err := writeFile(target, "image,description\n"); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(target, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Stop before Start is a no-op.
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
