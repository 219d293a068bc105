package session

// State is a handshake position. Both roles walk the same sequence.
type State int

const (
	StateStart State = iota
	StateSenderHelloSent
	StateReceiverHelloSent
	StateSenderAcknowledgeSent
	StateKeysDerived
	StateAborted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSenderHelloSent:
		return "sender_hello_sent"
	case StateReceiverHelloSent:
		return "receiver_hello_sent"
	case StateSenderAcknowledgeSent:
		return "sender_ack_sent"
	case StateKeysDerived:
		return "keys_derived"
	case StateAborted:
		return "aborted"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Role selects which side of the exchange a Session drives.
type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "responder"
}
