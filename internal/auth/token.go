package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// FailureKind enumerates the reasons token verification can fail. The set
// is closed so the request gate can match exhaustively; externally every
// kind collapses to 401.
type FailureKind int

const (
	// FailureMalformed covers unparseable tokens, wrong signing methods and
	// bad signatures.
	FailureMalformed FailureKind = iota
	// FailureExpired means the token's lifetime has passed.
	FailureExpired
	// FailureUnknownSubject means the subject no longer exists (or is
	// deactivated) in the credential store.
	FailureUnknownSubject
	// FailureRevoked means the identity's credential changed after issuance.
	FailureRevoked
	// FailureMissingToken means the request carried no bearer token at all.
	FailureMissingToken
)

func (k FailureKind) String() string {
	switch k {
	case FailureMalformed:
		return "malformed"
	case FailureExpired:
		return "expired"
	case FailureUnknownSubject:
		return "unknown_subject"
	case FailureRevoked:
		return "revoked"
	case FailureMissingToken:
		return "missing_token"
	default:
		return "unknown"
	}
}

// VerifyError is the tagged verification failure returned by Verify.
type VerifyError struct {
	Kind FailureKind
}

func (e *VerifyError) Error() string {
	return "auth: token verification failed: " + e.Kind.String()
}

// Claims is the fixed claim set embedded in every issued token. Missing
// claims surface as zero values at parse time instead of runtime map
// lookups.
type Claims struct {
	Username        string `json:"username"`
	Role            string `json:"role"`
	UserID          int64  `json:"userId"`
	CredentialEpoch string `json:"credentialEpoch"`
	jwt.RegisteredClaims
}

// IdentityStore is the narrow credential-store interface the verifier
// consumes. Absence is reported as shared.ErrIdentityNotFound; records are
// never partial.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (*Identity, error)
}

// ErrIdentityNotFound is returned by IdentityStore implementations when no
// account matches the username.
var ErrIdentityNotFound = errors.New("auth: identity not found")

// epoch renders a credential timestamp the way it is embedded in tokens:
// UTC, second precision, RFC 3339.
func epoch(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Issuer mints signed tokens for authenticated identities. The signing
// secret is injected once at construction and never mutated.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an Issuer with the given HMAC secret and token TTL.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for an already-authenticated identity. The credential
// epoch is read from the identity at call time, not cached. No state is
// written anywhere.
func (i *Issuer) Issue(identity *Identity) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		Username:        identity.Username,
		Role:            string(identity.Role),
		UserID:          identity.ID,
		CredentialEpoch: epoch(identity.CredentialChangedAt),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", shared.Internal("could not sign token", err)
	}
	return signed, nil
}

// Verifier validates bearer tokens against the live credential state. It
// holds no mutable state of its own; the identity lookup is its only
// suspension point.
type Verifier struct {
	secret []byte
	store  IdentityStore
	now    func() time.Time
}

// NewVerifier constructs a Verifier sharing the issuer's secret.
func NewVerifier(secret []byte, store IdentityStore) *Verifier {
	return &Verifier{secret: secret, store: store, now: time.Now}
}

// Verify checks raw and returns the verified principal. Check order is
// fixed: signature, expiry, subject existence, credential epoch. Role and
// store are taken from the live identity, so a role downgrade is effective
// on the very next request. Failures are *VerifyError; anything else is an
// infrastructure fault.
func (v *Verifier) Verify(ctx context.Context, raw string) (shared.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		// Signature is checked before claim validation, so an expiry error
		// implies the signature already verified.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return shared.Principal{}, &VerifyError{Kind: FailureExpired}
		}
		return shared.Principal{}, &VerifyError{Kind: FailureMalformed}
	}

	tokenEpoch, err := time.Parse(time.RFC3339, claims.CredentialEpoch)
	if err != nil || claims.Username == "" {
		return shared.Principal{}, &VerifyError{Kind: FailureMalformed}
	}

	identity, err := v.store.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return shared.Principal{}, &VerifyError{Kind: FailureUnknownSubject}
		}
		return shared.Principal{}, fmt.Errorf("auth: identity lookup: %w", err)
	}
	if !identity.IsActive {
		return shared.Principal{}, &VerifyError{Kind: FailureUnknownSubject}
	}

	// Any mismatch counts as revoked, including an embedded epoch that
	// predates the account itself.
	if epoch(tokenEpoch) != epoch(identity.CredentialChangedAt) {
		return shared.Principal{}, &VerifyError{Kind: FailureRevoked}
	}

	return shared.Principal{
		UserID:   identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
		StoreID:  identity.StoreID,
	}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (any, error) {
	return v.secret, nil
}
