// Package common contains shared constants and sentinel errors used across
// enigma components.
package common

// AuthorizationHeaderName is the gRPC metadata key carrying the admin bearer
// token on administrative calls.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token inside the authorization header value.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is the metadata key used to correlate log lines of a
// single call.
const RequestIDHeaderName = "x-request-id"
