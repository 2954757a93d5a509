package auth

import (
	"path/filepath"
	"testing"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	store, err := OpenTokenStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("OpenTokenStore: %v", err)
	}
	defer store.Close()

	got, err := store.Load("https://login.example.test/a", "client-a")
	if err != nil {
		t.Fatalf("Load (empty): %v", err)
	}
	if got != "" {
		t.Errorf("Load on empty store = %q, want empty", got)
	}

	if err := store.Save("https://login.example.test/a", "client-a", "rt-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save("https://login.example.test/a", "client-a", "rt-2"); err != nil {
		t.Fatalf("Save (upsert): %v", err)
	}

	got, err = store.Load("https://login.example.test/a", "client-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "rt-2" {
		t.Errorf("Load = %q, want upserted rt-2", got)
	}

	// Distinct registrations are isolated.
	got, err = store.Load("https://login.example.test/a", "client-b")
	if err != nil {
		t.Fatalf("Load (other client): %v", err)
	}
	if got != "" {
		t.Errorf("Load other client = %q, want empty", got)
	}

	if err := store.Delete("https://login.example.test/a", "client-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.Load("https://login.example.test/a", "client-a")
	if err != nil {
		t.Fatalf("Load (after delete): %v", err)
	}
	if got != "" {
		t.Errorf("Load after delete = %q, want empty", got)
	}
}
