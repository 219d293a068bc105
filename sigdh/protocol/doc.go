// Package protocol defines the sigdh wire formats.
//
// The handshake is three fixed-size packets (see Codec). Once keys are
// derived, traffic switches to length-prefixed frames (see WriteFrame).
package protocol
