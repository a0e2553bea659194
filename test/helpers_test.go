package test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/opencivic/portalauth"
	"github.com/opencivic/portalauth/redisstore"
)

var integrationSecret = []byte("integration-signing-secret-0123456789")

// newIntegrationEngine wires the engine to a real redisstore on miniredis,
// the same topology the portal runs in production minus the network.
func newIntegrationEngine(t *testing.T) (*portalauth.Engine, *redisstore.AccountStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisstore.NewAccountStore(client, "it")
	revocation := redisstore.NewRevocationStore(client, "it")

	engine, err := portalauth.New().
		WithSigningSecret(integrationSecret).
		WithAccountStore(store).
		WithRevocationStore(revocation).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store, mr
}

func seedResident(t *testing.T, store *redisstore.AccountStore) *portalauth.Account {
	t.Helper()
	acct := &portalauth.Account{
		Username:         "mgarcia",
		DisplayName:      "Maria Garcia",
		Role:             portalauth.RoleResident,
		CredentialStatus: portalauth.CredentialDefault,
		DateOfBirth:      time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Create(context.Background(), acct); err != nil {
		t.Fatalf("seed resident: %v", err)
	}
	return acct
}

func seedAdmin(t *testing.T, engine *portalauth.Engine, store *redisstore.AccountStore) string {
	t.Helper()
	ctx := context.Background()
	if err := store.Create(ctx, &portalauth.Account{
		Username:         "jchen",
		DisplayName:      "Jun Chen",
		Role:             portalauth.RoleAdmin,
		CredentialStatus: portalauth.CredentialDefault,
		DateOfBirth:      time.Date(1985, time.January, 2, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	login, err := engine.Login(ctx, "jchen", "010285")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	set, err := engine.SetPassword(ctx, login.Token, "Adm1n!pass")
	if err != nil {
		t.Fatalf("admin SetPassword: %v", err)
	}
	return set.Token
}
