// Package common contains shared constants and sentinel errors used across
// mediagate components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the signed
// caller credential on command requests.
const AccessTokenHeaderName = "access_token"

// SecondsPerDay converts verification lifetimes given in days.
const SecondsPerDay = 86400
