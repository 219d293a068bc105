// Package bigint is a thin fixed-width wrapper over math/big.
//
// Every Int carries the octet width it is encoded at, so conversions to and
// from wire bytes are always exact and comparisons cover the whole
// representation. Arithmetic is delegated to math/big, which is not
// constant-time; callers that need timing independence must supply a
// different engine behind the same API.
package bigint
