// Package session runs the three-message authenticated DH handshake.
//
//	initiator                                responder
//	SENDER_HELLO      g^a            ->
//	                                 <-      g^b       RECEIVER_HELLO
//	SENDER_ACK        sig_I(g^b)     ->
//	derive keys                              verify sig_I, derive keys
//
// Only the initiator is authenticated. The responder's identity is part of
// the configuration but is never exercised on the wire.
//
// A Session is the per-connection state for one role. Its step methods can
// be driven by hand (see Session.SenderHello and friends) or through
// Initiate and Respond, which run the exchange over a transport.Transport
// with a bounded wait for each expected message.
package session
