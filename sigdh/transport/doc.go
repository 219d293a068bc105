// Package transport moves handshake packets between the two parties.
//
// A Transport is a reliable, in-order byte pipe. The handshake always knows
// how many bytes it expects, so there is no framing at this layer. Blocking
// calls take a context; its deadline bounds the wait for each packet.
package transport
