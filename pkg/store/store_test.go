package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
)

// --- Memory Tests ---

func TestMemory_GetDefaultAndSet(t *testing.T) {
	m := NewMemory(map[string]string{"postcode": "M1 1AA"})

	if got := m.Get("licence", "fallback"); got != "fallback" {
		t.Errorf("expected default for missing key, got %q", got)
	}
	if got := m.Get("postcode", ""); got != "M1 1AA" {
		t.Errorf("expected seeded value, got %q", got)
	}

	if err := m.Set("licence", "ABC"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	want := map[string]string{"postcode": "M1 1AA", "licence": "ABC"}
	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("(-want +got)\n%v", diff)
	}
}

func TestMemory_SeedIsCopied(t *testing.T) {
	seed := map[string]string{"k": "v"}
	m := NewMemory(seed)
	seed["k"] = "changed"
	if got := m.Get("k", ""); got != "v" {
		t.Errorf("store should not alias its seed map, got %q", got)
	}
}

// --- File Tests ---

func TestFile_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.yaml")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if got := f.Get("postcode", "def"); got != "def" {
		t.Errorf("expected default, got %q", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("opening must not create the file")
	}
}

func TestFile_SetPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.yaml")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := f.Set("postcode", "SW1A 1AA"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := f.Set("testDate", "15/08/2026"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if got := reopened.Get("postcode", ""); got != "SW1A 1AA" {
		t.Errorf("expected persisted postcode, got %q", got)
	}
	if got := reopened.Get("testDate", ""); got != "15/08/2026" {
		t.Errorf("expected persisted date, got %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the store file in directory, got %d entries", len(entries))
	}
}

func TestFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	if err := os.WriteFile(path, []byte("postcode: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := OpenFile(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse store file") {
		t.Errorf("unexpected error: %v", err)
	}
}

// --- Redis Tests ---

func TestRedis_GetSet(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	r, err := NewRedis(RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer r.Close()

	if got := r.Get("postcode", "none"); got != "none" {
		t.Errorf("expected default for missing key, got %q", got)
	}
	if err := r.Set("postcode", "M1 1AA"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := r.Get("postcode", ""); got != "M1 1AA" {
		t.Errorf("expected stored value, got %q", got)
	}

	raw, err := mr.Get("slotwatch:postcode")
	if err != nil || raw != "M1 1AA" {
		t.Errorf("expected prefixed key in redis, got %q (err %v)", raw, err)
	}
}

func TestRedis_ReadFailureFallsBackToDefault(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	r, err := NewRedis(RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer r.Close()

	mr.Close()
	if got := r.Get("postcode", "def"); got != "def" {
		t.Errorf("expected default when redis is down, got %q", got)
	}
	if err := r.Set("postcode", "x"); err == nil {
		t.Error("expected write error when redis is down")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedis(RedisConfig{Addr: addr}); err == nil {
		t.Error("expected ping failure for closed server")
	}
}

// --- Open Tests ---

func TestOpen(t *testing.T) {
	kv, err := Open(KindMemory, Options{})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := kv.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", kv)
	}

	kv, err = Open(KindFile, Options{Path: filepath.Join(t.TempDir(), "s.yaml")})
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if _, ok := kv.(*File); !ok {
		t.Errorf("expected *File, got %T", kv)
	}

	if _, err := Open(Kind("etcd"), Options{}); err == nil {
		t.Error("expected error for unknown store kind")
	}
}
