// Package castv2 speaks the Cast v2 channel protocol: length-prefixed
// CastMessage protobuf frames over TLS carrying JSON payloads.
package castv2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

const maxFrameSize = 64 << 10

// CastMessage field numbers.
const (
	fieldProtocolVersion protowire.Number = 1
	fieldSourceID        protowire.Number = 2
	fieldDestinationID   protowire.Number = 3
	fieldNamespace       protowire.Number = 4
	fieldPayloadType     protowire.Number = 5
	fieldPayloadUTF8     protowire.Number = 6
	fieldPayloadBinary   protowire.Number = 7
)

// ErrFrameTooLarge is returned for frames above the protocol's 64 KiB limit.
var ErrFrameTooLarge = errors.New("cast frame too large")

// Message is a CastMessage with a string payload.
type Message struct {
	SourceID      string
	DestinationID string
	Namespace     string
	Payload       string
}

// Marshal encodes m as a CastMessage (protocol CASTV2_1_0, payload type STRING).
func (m Message) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldProtocolVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, 0)
	b = protowire.AppendTag(b, fieldSourceID, protowire.BytesType)
	b = protowire.AppendString(b, m.SourceID)
	b = protowire.AppendTag(b, fieldDestinationID, protowire.BytesType)
	b = protowire.AppendString(b, m.DestinationID)
	b = protowire.AppendTag(b, fieldNamespace, protowire.BytesType)
	b = protowire.AppendString(b, m.Namespace)
	b = protowire.AppendTag(b, fieldPayloadType, protowire.VarintType)
	b = protowire.AppendVarint(b, 0)
	b = protowire.AppendTag(b, fieldPayloadUTF8, protowire.BytesType)
	b = protowire.AppendString(b, m.Payload)
	return b
}

// Unmarshal decodes a CastMessage. Binary payloads are ignored.
func Unmarshal(b []byte) (Message, error) {
	var m Message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Message{}, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num != fieldPayloadBinary:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Message{}, protowire.ParseError(n)
			}
			switch num {
			case fieldSourceID:
				m.SourceID = v
			case fieldDestinationID:
				m.DestinationID = v
			case fieldNamespace:
				m.Namespace = v
			case fieldPayloadUTF8:
				m.Payload = v
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Message{}, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return m, nil
}

// WriteFrame writes m with its 4-byte big-endian length prefix.
func WriteFrame(w io.Writer, m Message) error {
	body := m.Marshal()
	if len(body) > maxFrameSize {
		return ErrFrameTooLarge
	}
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body))) //nolint:gosec // bounded by maxFrameSize
	copy(frame[4:], body)
	_, err := w.Write(frame)
	return err
}

// ReadFrame reads one length-prefixed message.
func ReadFrame(r io.Reader) (Message, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Message{}, err
	}
	size := binary.BigEndian.Uint32(hdr[:])
	if size > maxFrameSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, err
	}
	return Unmarshal(body)
}
