package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tlinford/zellij/internal/errctx"
)

// Frame type constants. Each frame is a 5-byte header (1 byte type + 4 byte
// big-endian payload length) followed by a CBOR payload.
const (
	// MessageTypeServer carries a ServerInstruction, client→server.
	MessageTypeServer byte = 0x01

	// MessageTypeClient carries a ClientInstruction, server→client.
	MessageTypeClient byte = 0x02
)

const messageHeaderLength = 5

// maxPayloadLength bounds a single frame. Render output for a full screen
// redraw is far below this.
const maxPayloadLength = 16 * 1024 * 1024

// Message is a single frame.
type Message struct {
	Type    byte
	Payload []byte
}

// WriteMessage writes the frame in one Write call so frames from serialized
// writers never interleave.
func WriteMessage(w io.Writer, message Message) error {
	if len(message.Payload) > maxPayloadLength {
		return fmt.Errorf("payload length %d exceeds maximum %d", len(message.Payload), maxPayloadLength)
	}
	frame := make([]byte, messageHeaderLength+len(message.Payload))
	frame[0] = message.Type
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(message.Payload)))
	copy(frame[messageHeaderLength:], message.Payload)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// ReadMessage reads one frame. A stream that ends cleanly before a header
// yields an error wrapping io.EOF.
func ReadMessage(r io.Reader) (Message, error) {
	var header [messageHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Message{}, fmt.Errorf("read message header: %w", err)
	}
	payloadLength := binary.BigEndian.Uint32(header[1:5])
	if payloadLength > maxPayloadLength {
		return Message{}, fmt.Errorf("payload length %d exceeds maximum %d", payloadLength, maxPayloadLength)
	}
	payload := make([]byte, payloadLength)
	if payloadLength > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Message{}, fmt.Errorf("read message payload: %w", err)
		}
	}
	return Message{Type: header[0], Payload: payload}, nil
}

type serverEnvelope struct {
	Instruction ServerInstruction    `cbor:"instruction"`
	Calls       []errctx.ContextType `cbor:"calls,omitempty"`
}

type clientEnvelope struct {
	Instruction ClientInstruction    `cbor:"instruction"`
	Calls       []errctx.ContextType `cbor:"calls,omitempty"`
}

// WriteServerInstruction frames a server-bound instruction.
func WriteServerInstruction(w io.Writer, instruction ServerInstruction, ctx errctx.Context) error {
	payload, err := marshal(serverEnvelope{Instruction: instruction, Calls: ctx.Calls()})
	if err != nil {
		return fmt.Errorf("encode %s: %w", instruction.Kind, err)
	}
	return WriteMessage(w, Message{Type: MessageTypeServer, Payload: payload})
}

// ReadServerInstruction reads a server-bound instruction.
func ReadServerInstruction(r io.Reader) (ServerInstruction, errctx.Context, error) {
	message, err := ReadMessage(r)
	if err != nil {
		return ServerInstruction{}, errctx.Context{}, err
	}
	if message.Type != MessageTypeServer {
		return ServerInstruction{}, errctx.Context{}, fmt.Errorf("unexpected message type 0x%02x, want 0x%02x", message.Type, MessageTypeServer)
	}
	var envelope serverEnvelope
	if err := unmarshal(message.Payload, &envelope); err != nil {
		return ServerInstruction{}, errctx.Context{}, fmt.Errorf("decode server instruction: %w", err)
	}
	return envelope.Instruction, errctx.FromCalls(envelope.Calls), nil
}

// WriteClientInstruction frames a client-bound instruction.
func WriteClientInstruction(w io.Writer, instruction ClientInstruction, ctx errctx.Context) error {
	payload, err := marshal(clientEnvelope{Instruction: instruction, Calls: ctx.Calls()})
	if err != nil {
		return fmt.Errorf("encode %s: %w", instruction.Kind, err)
	}
	return WriteMessage(w, Message{Type: MessageTypeClient, Payload: payload})
}

// ReadClientInstruction reads a client-bound instruction.
func ReadClientInstruction(r io.Reader) (ClientInstruction, errctx.Context, error) {
	message, err := ReadMessage(r)
	if err != nil {
		return ClientInstruction{}, errctx.Context{}, err
	}
	if message.Type != MessageTypeClient {
		return ClientInstruction{}, errctx.Context{}, fmt.Errorf("unexpected message type 0x%02x, want 0x%02x", message.Type, MessageTypeClient)
	}
	var envelope clientEnvelope
	if err := unmarshal(message.Payload, &envelope); err != nil {
		return ClientInstruction{}, errctx.Context{}, fmt.Errorf("decode client instruction: %w", err)
	}
	return envelope.Instruction, errctx.FromCalls(envelope.Calls), nil
}
