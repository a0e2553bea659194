package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opencivic/portalauth"
)

// stubStore serves a fixed set of accounts; updates succeed in place.
type stubStore struct {
	accounts map[string]*portalauth.Account
}

func (s *stubStore) FindByUsername(_ context.Context, username string) (*portalauth.Account, error) {
	for _, a := range s.accounts {
		if a.Username == username {
			out := *a
			return &out, nil
		}
	}
	return nil, portalauth.ErrAccountNotFound
}

func (s *stubStore) FindByID(_ context.Context, id string) (*portalauth.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, portalauth.ErrAccountNotFound
	}
	out := *a
	return &out, nil
}

func (s *stubStore) Update(_ context.Context, account *portalauth.Account) error {
	stored, ok := s.accounts[account.ID]
	if !ok {
		return portalauth.ErrAccountNotFound
	}
	if stored.Version != account.Version {
		return portalauth.ErrVersionConflict
	}
	next := *account
	next.Version++
	s.accounts[account.ID] = &next
	return nil
}

func (s *stubStore) Create(_ context.Context, account *portalauth.Account) error {
	if account.Version == 0 {
		account.Version = 1
	}
	out := *account
	s.accounts[account.ID] = &out
	return nil
}

func newGuardedEngine(t *testing.T) (*portalauth.Engine, string, string) {
	t.Helper()

	store := &stubStore{accounts: map[string]*portalauth.Account{}}
	ctx := context.Background()
	store.Create(ctx, &portalauth.Account{
		ID:               "acct-1",
		Username:         "mgarcia",
		Role:             portalauth.RoleResident,
		CredentialStatus: portalauth.CredentialDefault,
		DateOfBirth:      time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
	})
	store.Create(ctx, &portalauth.Account{
		ID:               "acct-2",
		Username:         "jchen",
		Role:             portalauth.RoleAdmin,
		CredentialStatus: portalauth.CredentialDefault,
		DateOfBirth:      time.Date(1985, time.January, 2, 0, 0, 0, 0, time.UTC),
	})

	engine, err := portalauth.New().
		WithSigningSecret([]byte("0123456789abcdef0123456789abcdef")).
		WithAccountStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	resident, err := engine.Login(ctx, "mgarcia", "051590")
	if err != nil {
		t.Fatalf("resident login: %v", err)
	}
	admin, err := engine.Login(ctx, "jchen", "010285")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return engine, resident.Token, admin.Token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, handler http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGuardInjectsClaims(t *testing.T) {
	engine, residentToken, _ := newGuardedEngine(t)

	var seen *portalauth.SessionClaims
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(t, handler, residentToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.Username != "mgarcia" {
		t.Errorf("claims = %+v", seen)
	}
}

func TestGuardRejectsMissingAndBadTokens(t *testing.T) {
	engine, _, _ := newGuardedEngine(t)
	handler := Guard(engine)(okHandler())

	if rec := doRequest(t, handler, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}
	if rec := doRequest(t, handler, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("non-bearer status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	engine, residentToken, adminToken := newGuardedEngine(t)
	handler := RequireRole(engine, portalauth.RoleAdmin)(okHandler())

	if rec := doRequest(t, handler, adminToken); rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, handler, residentToken); rec.Code != http.StatusForbidden {
		t.Errorf("resident status = %d, want 403", rec.Code)
	}
}

func TestRequireActiveCredential(t *testing.T) {
	engine, residentToken, _ := newGuardedEngine(t)
	handler := RequireActiveCredential(engine)(okHandler())

	// Still on the default credential: portal routes stay closed.
	if rec := doRequest(t, handler, residentToken); rec.Code != http.StatusForbidden {
		t.Fatalf("default-credential status = %d, want 403", rec.Code)
	}

	set, err := engine.SetPassword(context.Background(), residentToken, "Str0ng!pass")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if rec := doRequest(t, handler, set.Token); rec.Code != http.StatusOK {
		t.Errorf("active-credential status = %d, want 200", rec.Code)
	}
}
