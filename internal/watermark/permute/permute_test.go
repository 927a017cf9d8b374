package permute_test

import (
	"testing"

	"github.com/ypk/neurostamp/internal/watermark/permute"
)

func TestDeterminism(t *testing.T) {
	a, err := permute.Indices(4096, "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := permute.Indices(4096, "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same (n, secret) diverged at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestBijection(t *testing.T) {
	p, err := permute.Indices(1000, "some-secret", nil)
	if err != nil {
		t.Fatal(err)
	}
	seen := make([]bool, 1000)
	for _, v := range p {
		if v < 0 || v >= 1000 {
			t.Fatalf("index %d out of range", v)
		}
		if seen[v] {
			t.Fatalf("index %d appears twice", v)
		}
		seen[v] = true
	}
}

func TestDistinctSecrets(t *testing.T) {
	a, _ := permute.Indices(64, "alice", nil)
	b, _ := permute.Indices(64, "bob", nil)
	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	if same == len(a) {
		t.Fatal("alice and bob produced identical permutations")
	}
}

// Anagram secrets collide on the same seed. This is a documented weakness of
// the additive fold; the test pins the behavior so it is not "fixed" by
// accident, which would break every deployed verification key.
func TestAnagramCollision(t *testing.T) {
	a, _ := permute.Indices(256, "listen", nil)
	b, _ := permute.Indices(256, "silent", nil)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("anagram secrets diverged at %d; seed fold changed", i)
		}
	}
}

func TestEmptyDomain(t *testing.T) {
	if _, err := permute.Indices(0, "alice", nil); err != permute.ErrEmptyDomain {
		t.Fatalf("n=0: got %v, want ErrEmptyDomain", err)
	}
	if _, err := permute.Indices(-5, "alice", nil); err != permute.ErrEmptyDomain {
		t.Fatalf("n=-5: got %v, want ErrEmptyDomain", err)
	}
}
