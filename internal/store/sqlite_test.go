package store

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestSQLiteBlobRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	blob, err := OpenSQLite(path, "formcraft-state-v1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer blob.Close()

	raw, err := blob.Load()
	if err != nil || raw != nil {
		t.Fatalf("missing key means no prior state, got %v %v", raw, err)
	}

	if err := blob.Save([]byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := blob.Save([]byte(`{"v":2}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	raw, err = blob.Load()
	if err != nil || !bytes.Equal(raw, []byte(`{"v":2}`)) {
		t.Fatalf("load: %q %v", raw, err)
	}
}

func TestOpenSQLiteRequiresKey(t *testing.T) {
	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"), ""); err == nil {
		t.Fatalf("empty storage key must be rejected")
	}
}
