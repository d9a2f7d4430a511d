package hubspot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/common/errors"
)

func TestParseState(t *testing.T) {
	state, err := ParseState("user-1:org-1")
	require.NoError(t, err)
	assert.Equal(t, State{UserID: "user-1", OrgID: "org-1"}, state)
	assert.Equal(t, "user-1:org-1", state.Key())
}

func TestParseState_Invalid(t *testing.T) {
	for _, raw := range []string{"", "user-1", "a:b:c", ":org-1", "user-1:", ":"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseState(raw)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, CodeInvalidState))
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		})
	}
}

func TestState_RoundTrip(t *testing.T) {
	state := State{UserID: "TestUser", OrgID: "TestOrg"}

	parsed, err := ParseState(state.String())
	require.NoError(t, err)
	assert.Equal(t, state, parsed)
}
