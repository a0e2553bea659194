// Package token signs and verifies the portal's self-contained session
// tokens. A token is an HS256 JWT carrying identity, role, and
// credential-status claims; its authority is entirely cryptographic, so
// there is no server-side session record behind it.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired marks a structurally valid, correctly signed token whose
	// expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrBadSignature marks a token whose signature does not verify.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrMalformed marks everything else: truncated tokens, wrong
	// algorithm, undecodable claims.
	ErrMalformed = errors.New("token malformed")
)

// Config holds the codec's signing material and clock. The secret is
// explicit constructor input, never ambient process state.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now is the clock used for issuance and verification. Nil means
	// time.Now.
	Now func() time.Time
}

// Claims is the signed payload of one session token.
type Claims struct {
	Username         string `json:"unm"`
	DisplayName      string `json:"dnm,omitempty"`
	Role             string `json:"rol"`
	CredentialStatus string `json:"cst"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the claim set for one account. Issuance timestamps and
// the token ID are filled in by [Codec.Issue].
func ClaimsFor(accountID, username, displayName, role, credentialStatus string) Claims {
	return Claims{
		Username:         username,
		DisplayName:      displayName,
		Role:             role,
		CredentialStatus: credentialStatus,
		RegisteredClaims: jwt.RegisteredClaims{Subject: accountID},
	}
}

// AccountID returns the subject account identifier.
func (c *Claims) AccountID() string { return c.Subject }

// TokenID returns the unique token identifier (jti), the handle a
// revocation store keys on.
func (c *Claims) TokenID() string { return c.ID }

// Codec issues and verifies session tokens. Safe for concurrent use after
// construction.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a ready codec. A missing
// secret or non-positive TTL is an operator misconfiguration surfaced here,
// at construction, so it can never be mistaken for a credential failure at
// request time.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("token: signing secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token: TTL must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Codec{config: cfg}, nil
}

// Issue signs claims with a fresh token ID and the configured TTL. The
// caller fills the identity fields; issuance timestamps and expiry are set
// here.
func (c *Codec) Issue(claims Claims) (string, error) {
	now := c.config.Now()

	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.config.TTL))
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// Verify checks the signature and expiry of tokenStr and returns its claims.
// Failures are typed: ErrExpired, ErrBadSignature, or ErrMalformed. Callers
// that must not leak the distinction collapse them; the distinction still
// reaches audit logs.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.config.Now),
		jwt.WithExpirationRequired(),
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
