// Package api is the wire contract between the enigma server and its
// clients: message types, the gRPC service descriptor for
// enigma.v1.Enigma, a JSON codec registered under the "json" content
// subtype, and a typed client stub.
package api
