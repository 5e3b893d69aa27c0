// Package common contains shared constants and sentinel errors used across
// the book review server components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header value.
const BearerPrefix = "Bearer "

// DefaultScope is the authority granted to every registered user and carried
// in the "scope" claim of issued tokens.
const DefaultScope = "USER"
