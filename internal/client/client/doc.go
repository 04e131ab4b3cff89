// Package client contains the operator-side gRPC client for the mediagate
// command service.
//
// GRPCClient signs a short-lived caller credential for every Execute call
// and attaches it as access_token metadata. gRPC status codes are mapped to
// the sentinel errors in errors.go so callers can match with errors.Is.
package client
