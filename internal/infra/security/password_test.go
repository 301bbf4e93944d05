package security

import (
	"strings"
	"testing"
)

func TestHashPasswordAndVerifySuccess(t *testing.T) {
	password := "correct horse battery staple"

	encoded, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		t.Fatalf("unexpected hash format: %q", encoded)
	}
	if parts[0] != argon2Variant {
		t.Fatalf("unexpected variant: %s", parts[0])
	}
	if parts[1] != argon2Version {
		t.Fatalf("unexpected version: %s", parts[1])
	}

	ok, err := VerifyPassword(password, encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword returned false for correct password")
	}
}

func TestVerifyPasswordIncorrectPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("Tr0ub4dor&3", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	ok, err := VerifyPassword("", "anything")
	if err != nil || ok {
		t.Fatalf("empty password: ok=%v err=%v, want false nil", ok, err)
	}

	ok, err = VerifyPassword("password", "")
	if err != nil || ok {
		t.Fatalf("empty hash: ok=%v err=%v, want false nil", ok, err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("password", "not-an-argon2-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := VerifyPassword("password", "bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	first, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestConfigureArgon2RejectsWeakParameters(t *testing.T) {
	cases := []Argon2Config{
		{Memory: 1024, Iterations: 3, Parallelism: 4, SaltLength: 16, KeyLength: 32},
		{Memory: 64 * 1024, Iterations: 0, Parallelism: 4, SaltLength: 16, KeyLength: 32},
		{Memory: 64 * 1024, Iterations: 3, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: 64 * 1024, Iterations: 3, Parallelism: 4, SaltLength: 4, KeyLength: 32},
		{Memory: 64 * 1024, Iterations: 3, Parallelism: 4, SaltLength: 16, KeyLength: 8},
	}

	for _, cfg := range cases {
		if err := ConfigureArgon2(cfg); err == nil {
			t.Fatalf("ConfigureArgon2(%+v) accepted weak parameters", cfg)
		}
	}
}

func TestVerifyPasswordHonorsEmbeddedParameters(t *testing.T) {
	original := CurrentArgon2Config()
	t.Cleanup(func() {
		if err := ConfigureArgon2(original); err != nil {
			t.Fatalf("restore config: %v", err)
		}
	})

	light := Argon2Config{Memory: 16 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	if err := ConfigureArgon2(light); err != nil {
		t.Fatalf("ConfigureArgon2 returned error: %v", err)
	}

	encoded, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	// Verification uses the parameters embedded in the hash, not the
	// active configuration.
	if err := ConfigureArgon2(original); err != nil {
		t.Fatalf("ConfigureArgon2 returned error: %v", err)
	}

	ok, err := VerifyPassword("password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword should honor embedded parameters")
	}
}
