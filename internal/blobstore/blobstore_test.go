package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreWritesAndNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/receipts/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, path, errStore := store.Store(context.Background(), []byte("fake-png"), "image/png")
	if errStore != nil {
		t.Fatalf("store: %v", errStore)
	}
	if !strings.HasPrefix(url, "/receipts/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("unexpected path %q", path)
	}

	data, errRead := os.ReadFile(filepath.Join(dir, path))
	if errRead != nil {
		t.Fatalf("read back: %v", errRead)
	}
	if string(data) != "fake-png" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestLocalStoreUnknownContentType(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/receipts")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, path, errStore := store.Store(context.Background(), []byte("x"), "application/octet-stream")
	if errStore != nil {
		t.Fatalf("store: %v", errStore)
	}
	if !strings.HasSuffix(path, ".bin") {
		t.Fatalf("expected .bin fallback, got %q", path)
	}
}

func TestNewLocalStoreRejectsEmptyDir(t *testing.T) {
	if _, err := NewLocalStore("  ", "/receipts"); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
