package password

import (
	"errors"
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	// Low-cost profile so the suite stays fast; still above the floors.
	h, err := NewHasher(Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashVerify_RoundTrip(t *testing.T) {
	h := testHasher(t)

	encoded, err := h.Hash("Abcd123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected encoding: %q", encoded)
	}

	ok, err := h.Verify("Abcd123!", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}

	ok, err = h.Verify("Abcd123?", encoded)
	if err != nil {
		t.Fatalf("Verify(wrong): %v", err)
	}
	if ok {
		t.Fatal("wrong secret verified")
	}
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	h := testHasher(t)

	a, err := h.Hash("Abcd123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("Abcd123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same secret are identical; salt is not per-call")
	}
	// Both must still verify.
	for _, encoded := range []string{a, b} {
		if ok, err := h.Verify("Abcd123!", encoded); err != nil || !ok {
			t.Fatalf("Verify = %v, %v", ok, err)
		}
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	h := testHasher(t)

	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=8192,t=1,p=1$short",
		"$argon2i$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=8192,t=1,x=9$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA",
	}
	for _, encoded := range cases {
		ok, err := h.Verify("whatever", encoded)
		if ok {
			t.Fatalf("malformed hash %q verified", encoded)
		}
		if !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("hash %q: err = %v, want ErrMalformedHash", encoded, err)
		}
	}
}

func TestNewHasher_RejectsWeakParams(t *testing.T) {
	cases := []Params{
		{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16},
		{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16},
		{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16},
		{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16},
		{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
	}
	for _, p := range cases {
		if _, err := NewHasher(p); err == nil {
			t.Fatalf("params %+v accepted", p)
		}
	}
}

func TestDefaultParams_Valid(t *testing.T) {
	if _, err := NewHasher(DefaultParams()); err != nil {
		t.Fatalf("default params rejected: %v", err)
	}
}
