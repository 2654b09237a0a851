package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
)

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c := Disabled("--no-cache")
	defer c.Close()

	if c.Reason() != "--no-cache" {
		t.Errorf("Reason() = %q, want --no-cache", c.Reason())
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("Get on empty cache should miss")
	}
	if err := c.Set(ctx, "layout:a", []byte("first"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit || string(data) != "first" {
		t.Errorf("Get = %q, %v, %v, want first", data, hit, err)
	}

	if err := c.Set(ctx, "layout:a", []byte("second"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "layout:a"); string(data) != "second" {
		t.Errorf("Get after overwrite = %q, want second", data)
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Errorf("expired entry file still present: %v", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get corrupt = %v, %v, want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir removed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear, want 0", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
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

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := LayoutKeyOpts{CellWidth: 150, CellHeight: 140, PoolMargin: 70, LaneLabelWidth: 30}

	key := k.LayoutKey("doc", opts)
	if !strings.HasPrefix(key, "layout:") {
		t.Errorf("LayoutKey = %q, want layout: prefix", key)
	}
	if key != k.LayoutKey("doc", opts) {
		t.Error("LayoutKey should be deterministic")
	}

	tests := []struct {
		name string
		key  string
	}{
		{"other doc", k.LayoutKey("other", opts)},
		{"cell width", k.LayoutKey("doc", LayoutKeyOpts{CellWidth: 100, CellHeight: 140, PoolMargin: 70, LaneLabelWidth: 30})},
		{"max steps", k.LayoutKey("doc", LayoutKeyOpts{CellWidth: 150, CellHeight: 140, PoolMargin: 70, LaneLabelWidth: 30, MaxSteps: 5})},
		{"artifact", k.ArtifactKey("doc", ArtifactKeyOpts{Format: "svg"})},
	}
	for _, tt := range tests {
		if tt.key == key {
			t.Errorf("%s: key collides with base key %q", tt.name, key)
		}
	}
	if a, b := k.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"}), k.ArtifactKey("l", ArtifactKeyOpts{Format: "json"}); a == b {
		t.Error("ArtifactKey should depend on format")
	}
}

func TestLayoutKeyCoversEveryOption(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{CellWidth: 150, CellHeight: 140, PoolMargin: 70, LaneLabelWidth: 30}
	tests := []struct {
		name   string
		mutate func(*LayoutKeyOpts)
	}{
		{"cell height", func(o *LayoutKeyOpts) { o.CellHeight = 141 }},
		{"pool margin", func(o *LayoutKeyOpts) { o.PoolMargin = 0 }},
		{"lane label width", func(o *LayoutKeyOpts) { o.LaneLabelWidth = 31 }},
		{"grids", func(o *LayoutKeyOpts) { o.Grids = true }},
		{"tiny float change", func(o *LayoutKeyOpts) { o.CellWidth = 150.0000001 }},
	}
	want := k.LayoutKey("doc", base)
	for _, tt := range tests {
		opts := base
		tt.mutate(&opts)
		if got := k.LayoutKey("doc", opts); got == want {
			t.Errorf("%s: LayoutKey unchanged (%q)", tt.name, got)
		}
	}
}

func TestWithNamespace(t *testing.T) {
	base := NewDefaultKeyer()
	staging := WithNamespace(nil, "staging")
	opts := LayoutKeyOpts{CellWidth: 1}

	if got, want := staging.LayoutKey("d", opts), "staging/"+base.LayoutKey("d", opts); got != want {
		t.Errorf("LayoutKey = %q, want %q", got, want)
	}
	af := ArtifactKeyOpts{Format: "svg"}
	if got, want := staging.ArtifactKey("l", af), "staging/"+base.ArtifactKey("l", af); got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}
	if nk, ok := staging.(*NamespacedKeyer); !ok || nk.Namespace() != "staging" {
		t.Errorf("WithNamespace(nil, staging) = %T", staging)
	}
	if WithNamespace(base, "") != base {
		t.Error("WithNamespace with an empty namespace should return the inner keyer")
	}
	if staging.LayoutKey("d", opts) == WithNamespace(nil, "prod").LayoutKey("d", opts) {
		t.Error("namespaces share a layout key")
	}
}

func TestCodec(t *testing.T) {
	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	type shape struct {
		ID     string  `json:"id"`
		Points []point `json:"points"`
	}
	in := shape{ID: "a", Points: []point{{1, 2}, {3.5, 4}}}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !bytes.Contains(data, []byte("points")) {
		t.Error("encoded fields should be named by json tags")
	}
	var out shape
	if err := Decode(data, &out); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out.ID != "a" || len(out.Points) != 2 || out.Points[1] != (point{3.5, 4}) {
		t.Errorf("Decode = %+v, want %+v", out, in)
	}

	if err := Decode([]byte{0xc1}, &out); err == nil {
		t.Error("Decode of invalid data should fail")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("refused"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("RetryWithBackoff = %v after %d calls, want nil after 2", err, calls)
	}

	calls = 0
	permanent := errors.New("auth failed")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("RetryWithBackoff = %v after %d calls, want permanent after 1", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(errors.New("down"))
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("RetryWithBackoff = %v after %d calls, want retryable after 3", err, calls)
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestRedisKey(t *testing.T) {
	c := &RedisCache{prefix: redisPrefix}
	if got := c.key("layout:x"); got != "autolayout:layout:x" {
		t.Errorf("key = %q, want autolayout:layout:x", got)
	}
}

func TestMongoEntry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	forever := newMongoEntry("k", []byte("v"), 0, now)
	if forever.ExpiresAt != nil || forever.expired(now.Add(1000*time.Hour)) {
		t.Error("entry without ttl should never expire")
	}

	e := newMongoEntry("k", []byte("v"), time.Minute, now)
	if e.expired(now.Add(30 * time.Second)) {
		t.Error("entry expired before its ttl")
	}
	if !e.expired(now.Add(2 * time.Minute)) {
		t.Error("entry should expire after its ttl")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, config.Cache{Backend: config.BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(file) = %T, want *FileCache", c)
	}

	c, err = Open(ctx, config.Cache{Backend: config.BackendNone})
	if err != nil {
		t.Fatalf("Open(none) error: %v", err)
	}
	if d, ok := c.(*DisabledCache); !ok || !strings.Contains(d.Reason(), "none") {
		t.Errorf("Open(none) = %T, want *DisabledCache naming the backend", c)
	}

	if _, err := Open(ctx, config.Cache{Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(memcached) error = %v, want ErrUnknownBackend", err)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "autolayout") {
		t.Errorf("DefaultDir() = %q, want /tmp/xdg/autolayout", dir)
	}
}
