// Package params holds the process-wide constants of a deployment: the DH
// group and the two RSA signing identities.
//
// A Config is built once at startup, validated, and then shared read-only by
// every session. Nothing in this package is mutated after construction.
package params
