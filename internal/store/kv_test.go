package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// exerciseKV runs the contract every backend must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := kv.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v; want false, nil", found, err)
	}
	if err := kv.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, found, err := kv.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get(k) = found %v, err %v", found, err)
	}
	if string(got) != "two" {
		t.Fatalf("Get(k) = %q, want %q", got, "two")
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := kv.Get(ctx, "k"); found {
		t.Fatalf("Get after Delete should miss")
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete of a missing key should succeed: %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Set(ctx, "k", []byte("abc"))
	got, _, _ := m.Get(ctx, "k")
	got[0] = 'z'
	again, _, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through Get result: %q", again)
	}
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kv.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), "persisted", []byte("yes")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = kv.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, found, err := reopened.Get(context.Background(), "persisted")
	if err != nil || !found || string(got) != "yes" {
		t.Fatalf("reopened Get = %q, %v, %v", got, found, err)
	}
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run the redis backend test")
	}
	kv, err := OpenRedis(context.Background(), RedisOptions{Addr: addr, Prefix: "mjug-test"})
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), OpenOptions{Driver: "etcd"}); err == nil {
		t.Fatalf("Open should reject an unknown driver")
	}
	kv, err := Open(context.Background(), OpenOptions{})
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	if _, ok := kv.(*Memory); !ok {
		t.Fatalf("default driver = %T, want *Memory", kv)
	}
}
