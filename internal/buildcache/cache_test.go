package buildcache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	key := Key("v1", "optimistic", "component A {}")
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(ctx, key, "a.pulse", "export class A {}"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	code, ok, err := c.Get(ctx, key)
	if err != nil || !ok || code != "export class A {}" {
		t.Fatalf("Get = %q, %v, %v", code, ok, err)
	}
	if err := c.Put(ctx, key, "a.pulse", "replaced"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if code, _, _ := c.Get(ctx, key); code != "replaced" {
		t.Fatalf("entry not replaced: %q", code)
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Fatal("keys must not collide across part boundaries")
	}
	if Key("x") != Key("x") {
		t.Fatal("keys must be deterministic")
	}
	if len(Key()) != 64 {
		t.Fatalf("unexpected key length %d", len(Key()))
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	c, path := openTemp(t)
	if err := c.Put(ctx, "k", "a.pulse", "code"); err != nil {
		t.Fatal(err)
	}
	c.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if code, ok, err := reopened.Get(ctx, "k"); err != nil || !ok || code != "code" {
		t.Fatalf("Get after reopen = %q, %v, %v", code, ok, err)
	}
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	c, _ := openTemp(t)
	c.Put(ctx, "k1", "a.pulse", "1234")
	c.Put(ctx, "k2", "a.pulse", "56")
	c.Put(ctx, "k3", "b.pulse", "7")

	s, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Entries != 3 || s.Bytes != 7 || s.Sources != 2 {
		t.Fatalf("stats = %+v", s)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if s, _ := c.Stats(ctx); s.Entries != 0 || s.Bytes != 0 {
		t.Fatalf("stats after clear = %+v", s)
	}
}

func TestStaleSchemaIsRebuilt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE outputs (key TEXT PRIMARY KEY, code BLOB)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()
	ctx := context.Background()
	if err := c.Put(ctx, "k", "a.pulse", "code"); err != nil {
		t.Fatalf("Put on rebuilt table failed: %v", err)
	}
}
