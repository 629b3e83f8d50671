package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/squib/buffer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	payload := []byte{0x01, 0x02, 0x03, 0x04}

	hash, err := s.Put("app.main", buffer.NewFromBytes(payload))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if hash != HashOf(payload) {
		t.Errorf("Put hash = %s, want %s", hash, HashOf(payload))
	}

	got, err := s.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got.Data(), payload) {
		t.Errorf("Get returned %v, want %v", got.Data(), payload)
	}
	if got.Remaining() != len(payload) {
		t.Errorf("Remaining = %d, want %d (cursor at start)", got.Remaining(), len(payload))
	}
}

func TestPutEmptyBuffer(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Put("x", buffer.New()); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Put(empty) = %v, want ErrEmptyImage", err)
	}
}

func TestGetUnknownHash(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(HashOf([]byte("absent"))); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Get(unknown) = %v, want ErrImageNotFound", err)
	}
}

func TestGetByName(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Put("app.main", buffer.NewFromBytes([]byte{0x01})); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	wantHash, err := s.Put("app.main", buffer.NewFromBytes([]byte{0x02}))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, hash, err := s.GetByName("app.main")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if hash != wantHash {
		// Same-second inserts tie on created_at; the hash tiebreak keeps
		// the result deterministic, but either way it must be one of the
		// two stored images. Pin the content to the returned hash.
		if HashOf(got.Data()) != hash {
			t.Errorf("GetByName content does not match its own hash")
		}
	} else if !bytes.Equal(got.Data(), []byte{0x02}) {
		t.Errorf("GetByName = %v, want [02]", got.Data())
	}

	if _, _, err := s.GetByName("absent"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("GetByName(absent) = %v, want ErrImageNotFound", err)
	}
}

func TestPutIsIdempotentForSameBytes(t *testing.T) {
	s := openTestStore(t)
	payload := []byte{0xAB, 0xCD}

	h1, err := s.Put("a", buffer.NewFromBytes(payload))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := s.Put("b", buffer.NewFromBytes(payload))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("same bytes produced different hashes: %s vs %s", h1, h2)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List returned %d entries after duplicate Put, want 1", len(entries))
	}
}

func TestHasAndDelete(t *testing.T) {
	s := openTestStore(t)

	hash, err := s.Put("x", buffer.NewFromBytes([]byte{0x11}))
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.Has(hash)
	if err != nil || !ok {
		t.Errorf("Has = %v, %v, want true, nil", ok, err)
	}

	if err := s.Delete(hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	ok, err = s.Has(hash)
	if err != nil || ok {
		t.Errorf("Has after delete = %v, %v, want false, nil", ok, err)
	}
	if err := s.Delete(hash); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Delete(unknown) = %v, want ErrImageNotFound", err)
	}
}

func TestListOrderAndFields(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Put("one", buffer.NewFromBytes([]byte{0x01})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("two", buffer.NewFromBytes([]byte{0x02, 0x03})); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Hash == "" || e.Name == "" || e.Size == 0 || e.CreatedAt.IsZero() {
			t.Errorf("incomplete entry: %+v", e)
		}
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := s.Put("app", buffer.NewFromBytes([]byte{0xFE, 0xED}))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	got, err := s2.Get(hash)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !bytes.Equal(got.Data(), []byte{0xFE, 0xED}) {
		t.Errorf("Get after reopen = %v, want [FE ED]", got.Data())
	}
}
