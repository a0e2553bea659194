// Package redisstore provides Redis-backed implementations of the
// portalauth store contracts: the account store with optimistic-concurrency
// conditional updates, and a token revocation store.
//
// Layout: one JSON document per account under <prefix>:acct:<id>, plus a
// username index under <prefix>:uname:<username>. Conditional updates run
// inside a WATCH transaction so a concurrent writer forces a version
// conflict instead of a lost write.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/opencivic/portalauth"
)

const defaultPrefix = "pa"

// AccountStore implements portalauth.AccountStore on a Redis client.
type AccountStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewAccountStore creates a store using the given key prefix; empty means
// "pa".
func NewAccountStore(client redis.UniversalClient, prefix string) *AccountStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &AccountStore{redis: client, prefix: prefix}
}

func (s *AccountStore) accountKey(id string) string {
	return s.prefix + ":acct:" + id
}

func (s *AccountStore) usernameKey(username string) string {
	return s.prefix + ":uname:" + strings.ToLower(username)
}

// accountRecord is the wire shape persisted per account.
type accountRecord struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name,omitempty"`
	Role             string    `json:"role"`
	CredentialStatus string    `json:"credential_status"`
	CredentialHash   string    `json:"credential_hash,omitempty"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	FailedAttempts   int       `json:"failed_attempts"`
	LastAttemptAt    time.Time `json:"last_attempt_at"`
	LockedUntil      time.Time `json:"locked_until"`
	Version          uint64    `json:"version"`
}

func encodeAccount(a *portalauth.Account) ([]byte, error) {
	return json.Marshal(accountRecord{
		ID:               a.ID,
		Username:         strings.ToLower(a.Username),
		DisplayName:      a.DisplayName,
		Role:             string(a.Role),
		CredentialStatus: string(a.CredentialStatus),
		CredentialHash:   a.CredentialHash,
		DateOfBirth:      a.DateOfBirth,
		FailedAttempts:   a.FailedAttempts,
		LastAttemptAt:    a.LastAttemptAt,
		LockedUntil:      a.LockedUntil,
		Version:          a.Version,
	})
}

func decodeAccount(data []byte) (*portalauth.Account, error) {
	var rec accountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt account record: %v", portalauth.ErrStoreUnavailable, err)
	}
	return &portalauth.Account{
		ID:               rec.ID,
		Username:         rec.Username,
		DisplayName:      rec.DisplayName,
		Role:             portalauth.RoleClass(rec.Role),
		CredentialStatus: portalauth.CredentialStatus(rec.CredentialStatus),
		CredentialHash:   rec.CredentialHash,
		DateOfBirth:      rec.DateOfBirth,
		FailedAttempts:   rec.FailedAttempts,
		LastAttemptAt:    rec.LastAttemptAt,
		LockedUntil:      rec.LockedUntil,
		Version:          rec.Version,
	}, nil
}

// FindByUsername resolves the username index, then loads the account.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*portalauth.Account, error) {
	id, err := s.redis.Get(ctx, s.usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, portalauth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
	return s.FindByID(ctx, id)
}

// FindByID loads one account by its identifier.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*portalauth.Account, error) {
	data, err := s.redis.Get(ctx, s.accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, portalauth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
	return decodeAccount(data)
}

// Create inserts a new account, assigning an ID when absent. The username
// index is claimed first with SETNX so two concurrent registrations cannot
// share a handle.
func (s *AccountStore) Create(ctx context.Context, account *portalauth.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.Username = strings.ToLower(account.Username)
	if account.Version == 0 {
		account.Version = 1
	}

	claimed, err := s.redis.SetNX(ctx, s.usernameKey(account.Username), account.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
	if !claimed {
		return portalauth.ErrDuplicateUsername
	}

	data, err := encodeAccount(account)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.accountKey(account.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
	return nil
}

// Update performs the conditional write: it succeeds only when the stored
// version still equals account.Version, and advances the stored version by
// one. A concurrent write in the WATCH window, or a version mismatch,
// surfaces as portalauth.ErrVersionConflict; the caller owns the
// fetch-evaluate-update retry.
func (s *AccountStore) Update(ctx context.Context, account *portalauth.Account) error {
	key := s.accountKey(account.ID)

	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return portalauth.ErrAccountNotFound
			}
			return fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
		}

		stored, err := decodeAccount(data)
		if err != nil {
			return err
		}
		if stored.Version != account.Version {
			return portalauth.ErrVersionConflict
		}

		next := *account
		next.Version = account.Version + 1
		encoded, err := encodeAccount(&next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		// Someone else wrote the key inside the WATCH window.
		return portalauth.ErrVersionConflict
	case errors.Is(err, portalauth.ErrVersionConflict),
		errors.Is(err, portalauth.ErrAccountNotFound),
		errors.Is(err, portalauth.ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
}
