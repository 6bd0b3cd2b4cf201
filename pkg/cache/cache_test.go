package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get(key) = %q, %v, %v, want value", data, hit, err)
	}

	if err := c.Set(ctx, "key", []byte("other"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "key"); string(data) != "other" {
		t.Errorf("Get after overwrite = %q, want other", data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	now = now.Add(30 * time.Second)
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("entry expired early")
	}
	now = now.Add(time.Minute)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry did not expire")
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Errorf("expired entry still on disk: %v", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want miss", hit, err)
	}
}

func TestFileCacheCancelled(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Set(ctx, "key", nil, 0); err != context.Canceled {
		t.Errorf("Set error = %v, want context.Canceled", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v, want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir removed by Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h1))
	}
}

func TestHashParts(t *testing.T) {
	if HashParts([]byte("ab"), []byte("c")) == HashParts([]byte("a"), []byte("bc")) {
		t.Error("HashParts should separate parts")
	}
	if HashParts([]byte("x")) != HashParts([]byte("x")) {
		t.Error("HashParts should be deterministic")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	s1 := k.SnapshotKey("cfg", SnapshotKeyOpts{Seed: 1, Steps: 100})
	s2 := k.SnapshotKey("cfg", SnapshotKeyOpts{Seed: 2, Steps: 100})
	if s1 == s2 {
		t.Error("different seeds should produce different keys")
	}
	if !strings.HasPrefix(s1, "snapshot:") {
		t.Errorf("SnapshotKey = %s, want snapshot: prefix", s1)
	}
	if s1 != k.SnapshotKey("cfg", SnapshotKeyOpts{Seed: 1, Steps: 100}) {
		t.Error("SnapshotKey should be deterministic")
	}

	a1 := k.ArtifactKey("snap", ArtifactKeyOpts{Format: "svg", Width: 800})
	a2 := k.ArtifactKey("snap", ArtifactKeyOpts{Format: "png", Width: 800})
	if a1 == a2 {
		t.Error("different formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "v1:")
	key := scoped.SnapshotKey("cfg", SnapshotKeyOpts{})
	if want := "v1:" + NewDefaultKeyer().SnapshotKey("cfg", SnapshotKeyOpts{}); key != want {
		t.Errorf("SnapshotKey = %s, want %s", key, want)
	}
	if !strings.HasPrefix(scoped.ArtifactKey("s", ArtifactKeyOpts{}), "v1:artifact:") {
		t.Error("ArtifactKey should be prefixed")
	}
}
