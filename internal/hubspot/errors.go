package hubspot

import (
	"fmt"

	"hubspot-connector/internal/common/errors"
)

// Error kinds reported by this package. They are carried in AppError.Code.
const (
	CodeOAuthDenied              = "oauth_denied"
	CodeMissingCode              = "missing_code"
	CodeInvalidState             = "invalid_state"
	CodeTokenExchangeFailed      = "token_exchange_failed"
	CodeNoCredentialsFound       = "no_credentials_found"
	CodeMissingRefreshToken      = "missing_refresh_token"
	CodeRefreshFailed            = "refresh_failed"
	CodeInvalidCredentialsFormat = "invalid_credentials_format"
	CodeMissingAccessToken       = "missing_access_token"
	CodeProviderAPIFailed        = "provider_api_failed"
)

func errOAuthDenied(providerError, description string) error {
	details := providerError
	if description != "" {
		details = fmt.Sprintf("%s: %s", providerError, description)
	}
	return errors.AuthError("User denied or OAuth error occurred.").
		WithCode(CodeOAuthDenied).
		WithDetails(details)
}

func errMissingCode() error {
	return errors.ValidationError("No authorization code received.").WithCode(CodeMissingCode)
}

func errInvalidState(state string) error {
	return errors.ValidationError(fmt.Sprintf("state %q is not of the form user_id:org_id", state)).
		WithCode(CodeInvalidState)
}

func errNoCredentials(key string) error {
	return errors.NotFoundError(fmt.Sprintf("credentials for %s", key)).WithCode(CodeNoCredentialsFound)
}

func errMissingRefreshToken() error {
	return errors.AuthError("access token expired and no refresh token is stored").
		WithCode(CodeMissingRefreshToken)
}

func errInvalidCredentialsFormat(cause error) error {
	err := errors.ValidationError("Invalid credentials format").WithCode(CodeInvalidCredentialsFormat)
	err.Cause = cause
	return err
}

func errMissingAccessToken() error {
	return errors.ValidationError("credentials carry no access token").WithCode(CodeMissingAccessToken)
}
