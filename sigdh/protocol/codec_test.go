package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Frame{Type: MessageTypeData, Payload: []byte("ok")}
	if err := WriteFrame(&buf, in); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := WriteFrame(&buf, Frame{Type: MessageTypeClose}); err != nil {
		t.Fatalf("WriteFrame close: %v", err)
	}

	out, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if out.Type != in.Type {
		t.Fatalf("type mismatch")
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Fatalf("payload mismatch")
	}

	// The first read must not have consumed the second frame.
	out, err = ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame close: %v", err)
	}
	if out.Type != MessageTypeClose || len(out.Payload) != 0 {
		t.Fatalf("unexpected second frame %v", out.Type)
	}
}

func TestFrameRejectsHandshakeTypes(t *testing.T) {
	var buf bytes.Buffer
	for _, mt := range []MessageType{0, MessageTypeSenderHello, MessageTypeSenderAcknowledge} {
		if err := WriteFrame(&buf, Frame{Type: mt}); !errors.Is(err, ErrInvalidType) {
			t.Fatalf("WriteFrame(%v): expected ErrInvalidType, got %v", mt, err)
		}
	}

	buf.Write([]byte{byte(MessageTypeReceiverHello), 0, 0, 0, 0})
	if _, err := ReadFrame(&buf); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("ReadFrame: expected ErrInvalidType, got %v", err)
	}
}

func TestFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, Frame{Type: MessageTypeData, Payload: make([]byte, MaxFramePayload+1)})
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}

	buf.Reset()
	buf.Write([]byte{byte(MessageTypeData), 0xff, 0xff, 0xff, 0xff})
	if _, err := ReadFrame(&buf); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestMessageTypeString(t *testing.T) {
	if MessageTypeSenderAcknowledge.String() != "SENDER_ACK" {
		t.Fatalf("unexpected name %q", MessageTypeSenderAcknowledge.String())
	}
	if MessageType(99).String() != "UNKNOWN" {
		t.Fatalf("unexpected name for unknown type")
	}
}
