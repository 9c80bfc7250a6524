package cache

import (
	"context"
	"os"
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
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get() hit for missing key")
	}

	if err := c.Set(ctx, "doc", []byte("<metadata/>"), 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	data, hit, err := c.Get(ctx, "doc")
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v; want hit", hit, err)
	}
	if string(data) != "<metadata/>" {
		t.Errorf("Get() data = %q", data)
	}

	if err := c.Delete(ctx, "doc"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "doc"); hit {
		t.Error("Get() hit after Delete")
	}
	if err := c.Delete(ctx, "doc"); err != nil {
		t.Errorf("Delete() of missing key = %v, want nil", err)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Fatal("Get() missed a fresh entry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get() = %v, %v; want expired miss", hit, err)
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("key"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get() = %v, %v; want miss", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
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
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDocumentKey(t *testing.T) {
	a := DocumentKey("https://maven.google.com/master-index.xml")
	b := DocumentKey(" https://maven.google.com/master-index.xml\n")
	if a != b {
		t.Error("DocumentKey should ignore surrounding whitespace")
	}
	if a[:4] != "doc:" {
		t.Errorf("DocumentKey prefix = %q", a[:4])
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("LIBMIRROR_TEST_REDIS")
	if url == "" {
		t.Skip("LIBMIRROR_TEST_REDIS not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, url, "libmirror-test:")
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() hit after Delete")
	}
}
