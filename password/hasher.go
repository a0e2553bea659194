// Package password hashes and verifies user-chosen secrets with argon2id.
//
// Each hash uses a fresh random salt and a fixed adaptive-cost parameter set,
// and is stored as a single PHC-encoded string, so verification needs nothing
// beyond the stored hash itself. A malformed stored hash verifies as a
// mismatch; it never propagates as a crash into login control flow.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// ErrMalformedHash marks a stored hash that cannot be parsed. Verify reports
// it alongside ok=false so callers can log the defect while still treating
// the attempt as a plain mismatch.
var ErrMalformedHash = errors.New("malformed stored password hash")

// Params fixes the argon2id cost profile for one Hasher. Instances are set
// at engine construction and treated as immutable afterwards.
type Params struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is the portal's stock cost profile.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher derives and verifies PHC-encoded argon2id hashes.
type Hasher struct {
	params Params
}

// NewHasher validates the cost profile and returns a ready Hasher.
func NewHasher(p Params) (*Hasher, error) {
	switch {
	case p.Memory < minMemoryKB:
		return nil, errors.New("password: memory must be >= 8192 KB")
	case p.Time < 1:
		return nil, errors.New("password: time cost must be >= 1")
	case p.Parallelism < 1:
		return nil, errors.New("password: parallelism must be >= 1")
	case p.SaltLength < minSaltLength:
		return nil, errors.New("password: salt length must be >= 16")
	case p.KeyLength < minKeyLength:
		return nil, errors.New("password: key length must be >= 16")
	}
	return &Hasher{params: p}, nil
}

// Hash derives a PHC-encoded hash of secret using a freshly generated salt.
// The salt travels inside the returned string.
func (h *Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(secret),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of secret under the parameters recorded in
// encoded and compares in constant time. An unparseable encoded value
// returns (false, ErrMalformedHash).
func (h *Hasher) Verify(secret, encoded string) (bool, error) {
	salt, key, p, err := parse(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func parse(encoded string) (salt, key []byte, p Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, nil, p, ErrMalformedHash
	}

	version, convErr := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if !strings.HasPrefix(parts[2], "v=") || convErr != nil || version != argon2.Version {
		return nil, nil, p, ErrMalformedHash
	}

	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, nil, p, ErrMalformedHash
		}
		v, convErr := strconv.ParseUint(kv[1], 10, 32)
		if convErr != nil {
			return nil, nil, p, ErrMalformedHash
		}
		switch kv[0] {
		case "m":
			p.Memory = uint32(v)
		case "t":
			p.Time = uint32(v)
		case "p":
			if v > 255 {
				return nil, nil, p, ErrMalformedHash
			}
			p.Parallelism = uint8(v)
		default:
			return nil, nil, p, ErrMalformedHash
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return nil, nil, p, ErrMalformedHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return nil, nil, p, ErrMalformedHash
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, p, ErrMalformedHash
	}
	p.KeyLength = uint32(len(key))

	return salt, key, p, nil
}
