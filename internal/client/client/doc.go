// Package client contains the admin-side gRPC client for enigma.
//
// GRPCClient implements Client on top of api.EnigmaClient. Every call carries
// a freshly minted, short-lived admin JWT signed with the shared secret, and
// gRPC status codes are mapped to the sentinel errors in errors.go so callers
// can match them with errors.Is.
package client
