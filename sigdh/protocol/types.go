package protocol

type MessageType uint8

const (
	MessageTypeSenderHello       MessageType = 1
	MessageTypeReceiverHello     MessageType = 2
	MessageTypeSenderAcknowledge MessageType = 3
	MessageTypeData              MessageType = 4
	MessageTypeClose             MessageType = 5
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeSenderHello:
		return "SENDER_HELLO"
	case MessageTypeReceiverHello:
		return "RECEIVER_HELLO"
	case MessageTypeSenderAcknowledge:
		return "SENDER_ACK"
	case MessageTypeData:
		return "DATA"
	case MessageTypeClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Handshake reports whether t is one of the three handshake messages.
func (t MessageType) Handshake() bool {
	return t >= MessageTypeSenderHello && t <= MessageTypeSenderAcknowledge
}
