package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindValidation, KindOf(Validation("bad input")))
	require.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	require.Equal(t, KindUnauthorized, KindOf(Unauthorized("nope")))
	require.Equal(t, KindGeneral, KindOf(General("rule broken")))
	require.Equal(t, KindInternal, KindOf(Internal("boom", errors.New("cause"))))
	require.Equal(t, KindInternal, KindOf(errors.New("plain")))
	require.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("department not found"))
	require.Equal(t, KindNotFound, KindOf(err))
	require.Equal(t, "department not found", UserSafeMessage(err))
}

func TestUserSafeMessageWithholdsInternals(t *testing.T) {
	err := Internal("could not sign token", errors.New("hmac: secret too short"))
	require.Equal(t, "an unexpected error occurred", UserSafeMessage(err))
	require.NotContains(t, UserSafeMessage(err), "hmac")

	require.Equal(t, "an unexpected error occurred", UserSafeMessage(errors.New("pg: timeout")))
	require.Equal(t, "invalid username or password", UserSafeMessage(Unauthorized("invalid username or password")))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("could not store uploaded file", cause)
	require.ErrorIs(t, err, cause)
}
