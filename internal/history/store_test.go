package history

import (
	"path/filepath"
	"testing"
	"time"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.json")
}

func TestStoreByScriptFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "history.json"), 10)

	scriptA := filepath.Join(dir, "a.rd")
	scriptB := filepath.Join(dir, "b.rd")

	t1 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Minute)

	if err := store.Append(Entry{ID: "1", ExecutedAt: t1, ScriptPath: scriptA}); err != nil {
		t.Fatalf("append entry 1: %v", err)
	}
	if err := store.Append(Entry{ID: "2", ExecutedAt: t2, ScriptPath: scriptA}); err != nil {
		t.Fatalf("append entry 2: %v", err)
	}
	if err := store.Append(Entry{ID: "3", ExecutedAt: t1, ScriptPath: scriptB}); err != nil {
		t.Fatalf("append entry 3: %v", err)
	}

	got := store.ByScript(filepath.Join(dir, ".", "a.rd"))
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for script A, got %d", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Fatalf("expected newest-first order, got %q then %q", got[0].ID, got[1].ID)
	}

	if len(store.ByScript("")) != 0 {
		t.Fatalf("expected empty result for blank path")
	}
}

func TestStoreByRequest(t *testing.T) {
	store := NewStore(tempPath(t), 10)

	if err := store.Append(Entry{ID: "1", RequestName: "login", URL: "http://h/login"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(Entry{ID: "2", URL: "http://h/other"}); err != nil {
		t.Fatal(err)
	}

	if got := store.ByRequest("login"); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("by name: %v", got)
	}
	if got := store.ByRequest("http://h/other"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("by url: %v", got)
	}
	if got := store.ByRequest(""); len(got) != 2 {
		t.Fatalf("all: %v", got)
	}
}

func TestStoreCapsEntries(t *testing.T) {
	store := NewStore(tempPath(t), 2)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		entry := Entry{
			ID:         string(rune('a' + i)),
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Append(entry); err != nil {
			t.Fatal(err)
		}
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries: %d", len(entries))
	}
	if entries[0].ID != "c" || entries[1].ID != "b" {
		t.Fatalf("oldest entry should be dropped: %v", entries)
	}
}

func TestStoreReloadsFromDisk(t *testing.T) {
	path := tempPath(t)
	store := NewStore(path, 10)
	if err := store.Append(NewEntry("GET", "http://h/x")); err != nil {
		t.Fatal(err)
	}

	reopened := NewStore(path, 10)
	if err := reopened.Load(); err != nil {
		t.Fatal(err)
	}
	entries := reopened.Entries()
	if len(entries) != 1 || entries[0].URL != "http://h/x" {
		t.Fatalf("entries: %v", entries)
	}
	if entries[0].ID == "" {
		t.Fatal("entry should carry an id")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(tempPath(t), 10)
	entry := NewEntry("GET", "http://h/x")
	if err := store.Append(entry); err != nil {
		t.Fatal(err)
	}

	ok, err := store.Delete(entry.ID)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete("missing")
	if err != nil || ok {
		t.Fatalf("delete missing: %v %v", ok, err)
	}
	if len(store.Entries()) != 0 {
		t.Fatalf("entries: %v", store.Entries())
	}
}

func TestMissingFileStartsEmpty(t *testing.T) {
	store := NewStore(tempPath(t), 10)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if len(store.Entries()) != 0 {
		t.Fatalf("entries: %v", store.Entries())
	}
}
