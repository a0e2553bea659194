// Package defaultcred derives the system-issued fallback credential used by
// accounts that have never set a password of their own. The derivation is a
// fixed-width numeric rendering of the resident's date of birth; it is only
// consulted while the account's credential status is "default".
package defaultcred

import (
	"crypto/subtle"
	"time"
)

// Derive formats a date of birth as the default credential: two-digit month,
// two-digit day, two-digit year, concatenated without separators.
// 1990-05-15 derives to "051590". The caller must guarantee a non-zero date;
// a missing date of birth is an upstream data defect, not a runtime branch.
func Derive(dob time.Time) string {
	return dob.Format("010206")
}

// Match compares a presented secret against the derived credential in
// constant time.
func Match(dob time.Time, secret string) bool {
	expected := Derive(dob)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(secret)) == 1
}
