package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelfwise/shelfwise/internal/shared"
)

type fakeRepo struct {
	*fakeStore
	nextID      int64
	nextStoreID int64
	deleted     []int64
}

func newFakeRepo(identities ...*Identity) *fakeRepo {
	return &fakeRepo{fakeStore: newFakeStore(identities...), nextID: 100, nextStoreID: 10}
}

func (r *fakeRepo) FindByID(ctx context.Context, id int64) (*Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.identities {
		if identity.ID == id {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, ErrIdentityNotFound
}

func (r *fakeRepo) CreateManagerWithStore(ctx context.Context, identity *Identity, store NewStoreAccount) (*Identity, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.nextStoreID++
	created := *identity
	created.ID = r.nextID
	created.StoreID = r.nextStoreID
	created.IsActive = true
	now := time.Now().UTC()
	created.CreatedAt = now
	created.CredentialChangedAt = now
	r.identities[created.Username] = &created
	return &created, r.nextStoreID, nil
}

func (r *fakeRepo) CreateEmployee(ctx context.Context, identity *Identity) (*Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.identities[identity.Username]; exists {
		return nil, shared.Validation("username is already taken")
	}
	r.nextID++
	created := *identity
	created.ID = r.nextID
	created.IsActive = true
	now := time.Now().UTC()
	created.CreatedAt = now
	created.CredentialChangedAt = now
	r.identities[created.Username] = &created
	return &created, nil
}

func (r *fakeRepo) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, identity := range r.identities {
		if identity.ID == id {
			delete(r.identities, username)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return ErrIdentityNotFound
}

func (r *fakeRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.identities {
		if identity.ID == id {
			identity.PasswordHash = passwordHash
			identity.CredentialChangedAt = changedAt
			return nil
		}
	}
	return ErrIdentityNotFound
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginSuccess(t *testing.T) {
	identity := testIdentity()
	identity.PasswordHash = hashOf(t, "s3cret")
	repo := newFakeRepo(identity)
	svc := NewService(repo, NewIssuer(testSecret, time.Hour))

	result, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, identity.Username, result.User.Username)

	// The minted token verifies against the same store.
	verifier := NewVerifier(testSecret, repo)
	principal, err := verifier.Verify(context.Background(), result.Token)
	require.NoError(t, err)
	require.Equal(t, identity.ID, principal.UserID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	identity := testIdentity()
	identity.PasswordHash = hashOf(t, "s3cret")
	inactive := testIdentity()
	inactive.ID = 8
	inactive.Username = "bob"
	inactive.IsActive = false
	inactive.PasswordHash = hashOf(t, "s3cret")

	svc := NewService(newFakeRepo(identity, inactive), NewIssuer(testSecret, time.Hour))

	cases := []struct{ username, password string }{
		{"alice", "wrong"},
		{"nobody", "s3cret"},
		{"bob", "s3cret"},
	}
	var messages []string
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc.username, tc.password)
		require.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
		messages = append(messages, shared.UserSafeMessage(err))
	}
	require.Equal(t, messages[0], messages[1])
	require.Equal(t, messages[1], messages[2])
}

func TestRegisterManagerCreatesStore(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewIssuer(testSecret, time.Hour))

	result, err := svc.RegisterManager(context.Background(), RegisterManagerInput{
		Username:  "carol",
		Password:  "pass1234",
		Email:     "carol@example.com",
		FirstName: "Carol",
		LastName:  "Jones",
		StoreName: "Fresh Mart",
	})
	require.NoError(t, err)
	require.NotZero(t, result.StoreID)
	require.Equal(t, shared.RoleManager, result.User.Role)
	require.Equal(t, result.StoreID, result.User.StoreID)
}

func TestCreateEmployeeInheritsStore(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewIssuer(testSecret, time.Hour))
	manager := shared.Principal{UserID: 1, Username: "alice", Role: shared.RoleManager, StoreID: 42}

	user, err := svc.CreateEmployee(context.Background(), manager, CreateEmployeeInput{
		Username:  "dave",
		Password:  "pass1234",
		Email:     "dave@example.com",
		FirstName: "Dave",
		LastName:  "Kim",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), user.StoreID)
	require.Equal(t, shared.RoleEmployee, user.Role)
}

func TestDeleteEmployeeGuards(t *testing.T) {
	manager := testIdentity()
	employee := testIdentity()
	employee.ID = 8
	employee.Username = "dave"
	employee.Role = shared.RoleEmployee
	otherStore := testIdentity()
	otherStore.ID = 9
	otherStore.Username = "eve"
	otherStore.Role = shared.RoleEmployee
	otherStore.StoreID = 99

	repo := newFakeRepo(manager, employee, otherStore)
	svc := NewService(repo, NewIssuer(testSecret, time.Hour))
	principal := shared.Principal{UserID: manager.ID, Role: shared.RoleManager, StoreID: manager.StoreID}

	require.Equal(t, shared.KindNotFound, shared.KindOf(svc.DeleteEmployee(context.Background(), principal, 12345)))
	require.Equal(t, shared.KindGeneral, shared.KindOf(svc.DeleteEmployee(context.Background(), principal, manager.ID)))
	require.Equal(t, shared.KindUnauthorized, shared.KindOf(svc.DeleteEmployee(context.Background(), principal, otherStore.ID)))

	require.NoError(t, svc.DeleteEmployee(context.Background(), principal, employee.ID))
	require.Equal(t, []int64{employee.ID}, repo.deleted)
}

func TestChangePasswordRevokesOutstandingTokens(t *testing.T) {
	identity := testIdentity()
	identity.PasswordHash = hashOf(t, "old-pass")
	repo := newFakeRepo(identity)
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret, repo)
	svc := NewService(repo, issuer)
	principal := shared.Principal{UserID: identity.ID, Username: identity.Username, Role: identity.Role, StoreID: identity.StoreID}

	token, err := issuer.Issue(identity)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	require.Equal(t, shared.KindUnauthorized,
		shared.KindOf(svc.ChangePassword(context.Background(), principal, "wrong", "new-pass")))

	require.NoError(t, svc.ChangePassword(context.Background(), principal, "old-pass", "new-pass"))

	_, err = verifier.Verify(context.Background(), token)
	require.Equal(t, FailureRevoked, verifyKind(t, err))

	_, err = svc.Login(context.Background(), identity.Username, "new-pass")
	require.NoError(t, err)
}
