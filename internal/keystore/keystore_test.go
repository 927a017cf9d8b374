package keystore_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/ypk/neurostamp/internal/keystore"
)

func TestSealUnsealRoundTrip(t *testing.T) {
	store, err := keystore.Open(filepath.Join(t.TempDir(), "secret.key"))
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	vec := make([]float64, 4096)
	for i := range vec {
		vec[i] = rng.Float64()*512.0 - 256.0
	}

	blob, err := store.Seal(vec)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := store.Unseal(blob)
	if err != nil {
		t.Fatalf("unseal: %v", err)
	}
	if len(got) != len(vec) {
		t.Fatalf("length %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Fatalf("coefficient %d changed: %v -> %v", i, vec[i], got[i])
		}
	}
}

// The key file must survive restarts: a second Open of the same path decrypts
// blobs sealed by the first.
func TestKeyPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	first, err := keystore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := first.Seal([]float64{1.5, -2.25, 0})
	if err != nil {
		t.Fatal(err)
	}

	second, err := keystore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	vec, err := second.Unseal(blob)
	if err != nil {
		t.Fatalf("unseal after reopen: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1.5 || vec[1] != -2.25 || vec[2] != 0 {
		t.Fatalf("unexpected vector %v", vec)
	}
}

func TestTamperDetection(t *testing.T) {
	store, err := keystore.Open(filepath.Join(t.TempDir(), "secret.key"))
	if err != nil {
		t.Fatal(err)
	}
	blob, err := store.Seal([]float64{42})
	if err != nil {
		t.Fatal(err)
	}

	blob[len(blob)-1] ^= 0x01
	if _, err := store.Unseal(blob); err == nil {
		t.Fatal("tampered blob decrypted")
	}

	if _, err := store.Unseal([]byte("short")); err == nil {
		t.Fatal("truncated blob decrypted")
	}
}

func TestRejectsBadKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")
	if err := os.WriteFile(path, []byte("not-32-bytes"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := keystore.Open(path); err == nil {
		t.Fatal("undersized key file accepted")
	}
}
