// Package hubspot connects a user and organization to HubSpot.
//
// The flow has three steps:
//
//  1. Authorize builds the consent URL. The state parameter is
//     "{user_id}:{org_id}" and is echoed back by HubSpot.
//  2. HandleCallback exchanges the authorization code for tokens and stores
//     a TokenRecord under the same key, with a store TTL of one hour.
//  3. GetCredentials reads the record back. When the access token has
//     passed expires_at it is refreshed with the stored refresh token.
//
// FetchItems uses a record's access token to list contacts and normalizes
// them into models.IntegrationItem values.
//
// Nothing in this package retries. Every failure is an *errors.AppError
// whose Code is one of the Code* constants.
package hubspot
