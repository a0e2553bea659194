package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()
	c, err := NewCodec(Config{Secret: testSecret, TTL: 24 * time.Hour, Issuer: "portal", Now: now})
	require.NoError(t, err)
	return c
}

func baseClaims() Claims {
	return Claims{
		Username:         "mgruber",
		DisplayName:      "M. Gruber",
		Role:             "resident",
		CredentialStatus: "active",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "acct-1"},
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c := testCodec(t, func() time.Time { return issued })

	signed, err := c.Issue(baseClaims())
	require.NoError(t, err)

	got, err := c.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", got.AccountID())
	assert.Equal(t, "mgruber", got.Username)
	assert.Equal(t, "M. Gruber", got.DisplayName)
	assert.Equal(t, "resident", got.Role)
	assert.Equal(t, "active", got.CredentialStatus)
	assert.NotEmpty(t, got.TokenID())
	assert.Equal(t, issued.Unix(), got.IssuedAt.Unix())
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), got.ExpiresAt.Unix())
}

func TestVerify_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c := testCodec(t, func() time.Time { return now })

	signed, err := c.Issue(baseClaims())
	require.NoError(t, err)

	// Advance the clock past issuedAt + TTL.
	now = now.Add(24*time.Hour + time.Second)
	_, err = c.Verify(signed)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_BadSignature(t *testing.T) {
	c := testCodec(t, nil)
	signed, err := c.Issue(baseClaims())
	require.NoError(t, err)

	other, err := NewCodec(Config{Secret: []byte("ffffffffffffffffffffffffffffffff"), TTL: time.Hour})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_Malformed(t *testing.T) {
	c := testCodec(t, nil)

	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := c.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerify_MissingSubjectRejected(t *testing.T) {
	c := testCodec(t, nil)

	claims := baseClaims()
	claims.Subject = ""
	signed, err := c.Issue(claims)
	require.NoError(t, err)

	_, err = c.Verify(signed)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	c := testCodec(t, nil)

	a, err := c.Issue(baseClaims())
	require.NoError(t, err)
	b, err := c.Issue(baseClaims())
	require.NoError(t, err)

	ca, err := c.Verify(a)
	require.NoError(t, err)
	cb, err := c.Verify(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.TokenID(), cb.TokenID())
}

func TestNewCodec_Misconfiguration(t *testing.T) {
	_, err := NewCodec(Config{Secret: []byte("short"), TTL: time.Hour})
	assert.Error(t, err)

	_, err = NewCodec(Config{Secret: testSecret, TTL: 0})
	assert.Error(t, err)
}
