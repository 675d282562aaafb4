// Package common contains shared constants and sentinel errors used across
// profilekeeper components.
package common

// Cookie names used to deliver the session credentials to browsers.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// AuthorizationHeaderName carries "Bearer <access token>" for non-browser clients.
const AuthorizationHeaderName = "Authorization"
