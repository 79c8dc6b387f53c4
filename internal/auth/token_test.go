package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/shared"
)

type fakeStore struct {
	mu         sync.Mutex
	identities map[string]*Identity
	err        error
}

func newFakeStore(identities ...*Identity) *fakeStore {
	s := &fakeStore{identities: make(map[string]*Identity)}
	for _, id := range identities {
		s.identities[id.Username] = id
	}
	return s
}

func (s *fakeStore) FindByUsername(ctx context.Context, username string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	id, ok := s.identities[username]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	clone := *id
	return &clone, nil
}

func (s *fakeStore) put(id *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[id.Username] = id
}

var testSecret = []byte("test-secret-key")

func testIdentity() *Identity {
	return &Identity{
		ID:                  7,
		Username:            "alice",
		Role:                shared.RoleManager,
		StoreID:             3,
		IsActive:            true,
		CreatedAt:           time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		CredentialChangedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func verifyKind(t *testing.T, err error) FailureKind {
	t.Helper()
	var verr *VerifyError
	require.ErrorAs(t, err, &verr)
	return verr.Kind
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, 24*time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, identity.ID, principal.UserID)
	require.Equal(t, identity.Username, principal.Username)
	require.Equal(t, identity.Role, principal.Role)
	require.Equal(t, identity.StoreID, principal.StoreID)
}

func TestVerifyExpired(t *testing.T) {
	identity := testIdentity()
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, newFakeStore(identity))

	issuedAt := time.Now()
	issuer.now = func() time.Time { return issuedAt }
	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	verifier.now = func() time.Time { return issuedAt.Add(time.Hour + time.Second) }
	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureExpired, verifyKind(t, err))

	// One second before the deadline the token still verifies.
	verifier.now = func() time.Time { return issuedAt.Add(time.Hour - time.Second) }
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)
}

func TestVerifyWrongKeyIsMalformed(t *testing.T) {
	identity := testIdentity()
	issuer := NewIssuer([]byte("a completely different key"), time.Hour)
	verifier := NewVerifier(testSecret, newFakeStore(identity))

	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureMalformed, verifyKind(t, err))
}

func TestVerifyGarbageIsMalformed(t *testing.T) {
	verifier := NewVerifier(testSecret, newFakeStore())
	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..sig"} {
		_, err := verifier.Verify(context.Background(), raw)
		require.Equal(t, FailureMalformed, verifyKind(t, err), "input %q", raw)
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	identity := testIdentity()
	verifier := NewVerifier(testSecret, newFakeStore(identity))

	claims := Claims{
		Username:        identity.Username,
		Role:            string(identity.Role),
		UserID:          identity.ID,
		CredentialEpoch: epoch(identity.CredentialChangedAt),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), raw)
	require.Equal(t, FailureMalformed, verifyKind(t, err))
}

func TestVerifyUnknownSubject(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	// Account deleted after issuance.
	store.identities = map[string]*Identity{}
	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureUnknownSubject, verifyKind(t, err))
}

func TestVerifyDeactivatedSubject(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	deactivated := *identity
	deactivated.IsActive = false
	store.put(&deactivated)

	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureUnknownSubject, verifyKind(t, err))
}

func TestVerifyRevokedAfterPasswordChange(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	// Token verifies before the change.
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	changed := *identity
	changed.CredentialChangedAt = identity.CredentialChangedAt.Add(time.Minute)
	store.put(&changed)

	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureRevoked, verifyKind(t, err))

	// A token minted after the change verifies again.
	fresh, err := issuer.Issue(&changed)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), fresh)
	require.NoError(t, err)
}

func TestVerifyEpochPredatingAccountIsRevoked(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	stale := *identity
	stale.CredentialChangedAt = identity.CredentialChangedAt.Add(-time.Hour)
	token, err := issuer.Issue(&stale)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureRevoked, verifyKind(t, err))
}

func TestVerifyEpochSubSecondPrecision(t *testing.T) {
	// The embedded epoch is second truncated; a live timestamp carrying
	// sub-second precision must still match.
	identity := testIdentity()
	identity.CredentialChangedAt = time.Date(2024, 1, 1, 9, 0, 0, 431_000_000, time.UTC)
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)
}

func TestVerifyUsesLiveRoleAndStore(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	demoted := *identity
	demoted.Role = shared.RoleEmployee
	store.put(&demoted)

	principal, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, shared.RoleEmployee, principal.Role)
	require.False(t, principal.IsManager())
}

func TestVerifyStoreFailureIsNotAVerifyError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(testIdentity())
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	require.Error(t, err)
	var verr *VerifyError
	require.False(t, errors.As(err, &verr))
}

func TestVerifyConcurrent(t *testing.T) {
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := verifier.Verify(context.Background(), token)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestShortLivedTokenExpiresForReal(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps past a real token deadline")
	}
	identity := testIdentity()
	store := newFakeStore(identity)
	issuer := NewIssuer(testSecret, time.Second)
	verifier := NewVerifier(testSecret, store)

	token, err := issuer.Issue(identity)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureExpired, verifyKind(t, err))
}
