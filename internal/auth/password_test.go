package auth

import "testing"

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if digest == "hunter2" {
		t.Fatalf("digest must not equal the plaintext")
	}

	if !CheckPassword("hunter2", digest) {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword("hunter3", digest) {
		t.Fatalf("expected non-matching password to fail verification")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ")
	}
	if !CheckPassword("same-password", first) || !CheckPassword("same-password", second) {
		t.Fatalf("both digests must verify the original password")
	}
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest must never verify")
	}
}
