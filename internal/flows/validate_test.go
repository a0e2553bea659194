package flows

import "testing"

func TestCheckSecretPolicy(t *testing.T) {
	policy := SecretPolicy{MinLength: 8, RequireDigit: true, RequireSymbol: true}

	cases := []struct {
		name   string
		secret string
		want   bool
	}{
		{"meets all requirements", "Abcd123!", true},
		{"symbol class includes punctuation", "pass1234.", true},
		{"symbol class includes currency", "pass1234$", true},
		{"too short", "Ab1!", false},
		{"letters only", "abcdefgh", false},
		{"missing symbol", "abcdefg1", false},
		{"missing digit", "abcdefg!", false},
		{"empty", "", false},
		{"unicode length counts runes", "päss12!é", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CheckSecretPolicy(tc.secret, policy); got != tc.want {
				t.Errorf("CheckSecretPolicy(%q) = %v, want %v", tc.secret, got, tc.want)
			}
		})
	}
}

func TestCheckSecretPolicyRelaxed(t *testing.T) {
	policy := SecretPolicy{MinLength: 4}
	if !CheckSecretPolicy("abcd", policy) {
		t.Error("length-only policy rejected a four-letter secret")
	}
	if CheckSecretPolicy("abc", policy) {
		t.Error("length-only policy accepted a three-letter secret")
	}
}
