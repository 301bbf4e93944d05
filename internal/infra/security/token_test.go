package security

import "testing"

func TestGenerateSecureTokenUnique(t *testing.T) {
	first, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	second, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}

	if first == "" || first == second {
		t.Fatal("expected distinct non-empty tokens")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	if HashToken("token-value") != HashToken("token-value") {
		t.Fatal("same input should hash identically")
	}
	if HashToken("token-value") == HashToken("token-Value") {
		t.Fatal("different inputs should hash differently")
	}
	if HashToken("token-value") == "token-value" {
		t.Fatal("hash should not echo the input")
	}
}
