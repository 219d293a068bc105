// Package kex implements the ephemeral Diffie-Hellman exchange over the
// configured prime-modulus group.
package kex
