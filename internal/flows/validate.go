package flows

import "unicode"

// SecretPolicy is the strength policy applied to user-chosen secrets.
type SecretPolicy struct {
	MinLength     int
	RequireDigit  bool
	RequireSymbol bool
}

// CheckSecretPolicy reports whether secret satisfies the policy. Symbol means
// any punctuation or symbol rune; letters and digits do not count.
func CheckSecretPolicy(secret string, p SecretPolicy) bool {
	runes := []rune(secret)
	if len(runes) < p.MinLength {
		return false
	}

	var hasDigit, hasSymbol bool
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if p.RequireDigit && !hasDigit {
		return false
	}
	if p.RequireSymbol && !hasSymbol {
		return false
	}
	return true
}
