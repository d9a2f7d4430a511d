package hubspot

import "strings"

const stateSeparator = ":"

// State identifies who started an authorization. It travels through the
// provider redirect as "{user_id}:{org_id}" and doubles as the cache key of
// the resulting token record.
type State struct {
	UserID string
	OrgID  string
}

// String serializes the state for the OAuth state parameter
func (s State) String() string {
	return s.UserID + stateSeparator + s.OrgID
}

// Key is the credential store key for this user and organization
func (s State) Key() string {
	return s.String()
}

// ParseState validates a state echoed back by the provider. Both halves must
// be non-empty and the value must contain exactly one separator, so ids that
// themselves contain ':' cannot round-trip.
func ParseState(raw string) (State, error) {
	if strings.Count(raw, stateSeparator) != 1 {
		return State{}, errInvalidState(raw)
	}

	userID, orgID, _ := strings.Cut(raw, stateSeparator)
	if userID == "" || orgID == "" {
		return State{}, errInvalidState(raw)
	}

	return State{UserID: userID, OrgID: orgID}, nil
}
