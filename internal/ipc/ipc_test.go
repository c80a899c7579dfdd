package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tlinford/zellij/internal/errctx"
)

func TestTerminal(t *testing.T) {
	tests := []struct {
		instruction ClientInstruction
		want        bool
	}{
		{Error("boom"), true},
		{Exit(), true},
		{RenderNone(), true},
		{Render(""), false},
		{Render("hello"), false},
		{UnblockInputThread(), false},
	}

	for _, tt := range tests {
		if got := tt.instruction.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.instruction, got, tt.want)
		}
	}
}

func TestRenderNoneSurvivesWire(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteClientInstruction(&buf, RenderNone(), errctx.New()); err != nil {
		t.Fatalf("WriteClientInstruction: %v", err)
	}
	if err := WriteClientInstruction(&buf, Render(""), errctx.New()); err != nil {
		t.Fatalf("WriteClientInstruction: %v", err)
	}

	none, _, err := ReadClientInstruction(&buf)
	if err != nil {
		t.Fatalf("ReadClientInstruction: %v", err)
	}
	if none.Output != nil {
		t.Errorf("Render(None) decoded with output %q", *none.Output)
	}

	empty, _, err := ReadClientInstruction(&buf)
	if err != nil {
		t.Fatalf("ReadClientInstruction: %v", err)
	}
	if empty.Output == nil {
		t.Error("Render(Some(\"\")) decoded as Render(None)")
	}
}

func TestContextSurvivesWire(t *testing.T) {
	var buf bytes.Buffer
	ctx := errctx.New().AddCall(errctx.Server("Render"))
	if err := WriteClientInstruction(&buf, Render("x"), ctx); err != nil {
		t.Fatalf("WriteClientInstruction: %v", err)
	}

	_, got, err := ReadClientInstruction(&buf)
	if err != nil {
		t.Fatalf("ReadClientInstruction: %v", err)
	}
	if got.String() != ctx.String() {
		t.Errorf("context = %q, want %q", got.String(), ctx.String())
	}
}

func TestActionSurvivesWire(t *testing.T) {
	var buf bytes.Buffer
	in := ActionInstruction(Action{Kind: ActionWrite, Bytes: []byte("ls\r")})
	if err := WriteServerInstruction(&buf, in, errctx.New()); err != nil {
		t.Fatalf("WriteServerInstruction: %v", err)
	}

	out, _, err := ReadServerInstruction(&buf)
	if err != nil {
		t.Fatalf("ReadServerInstruction: %v", err)
	}
	if out.Kind != ServerAction || out.Action == nil {
		t.Fatalf("decoded %s, want Action", out)
	}
	if out.Action.Kind != ActionWrite || string(out.Action.Bytes) != "ls\r" {
		t.Errorf("action = %s %q, want Write \"ls\\r\"", out.Action.Kind, out.Action.Bytes)
	}
}

func TestReadWrongDirection(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteServerInstruction(&buf, ClientExitInstruction(), errctx.New()); err != nil {
		t.Fatalf("WriteServerInstruction: %v", err)
	}
	if _, _, err := ReadClientInstruction(&buf); err == nil {
		t.Error("reading a server frame as a client instruction should fail")
	}
}

func TestReadCleanEOF(t *testing.T) {
	_, _, err := ReadClientInstruction(bytes.NewReader(nil))
	if !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want wrapped io.EOF", err)
	}
}

func TestReadTruncatedPayload(t *testing.T) {
	var header [messageHeaderLength]byte
	header[0] = MessageTypeClient
	binary.BigEndian.PutUint32(header[1:5], 10)
	r := io.MultiReader(bytes.NewReader(header[:]), strings.NewReader("abc"))

	_, err := ReadMessage(r)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadOversizedPayload(t *testing.T) {
	var header [messageHeaderLength]byte
	header[0] = MessageTypeClient
	binary.BigEndian.PutUint32(header[1:5], maxPayloadLength+1)

	_, err := ReadMessage(bytes.NewReader(header[:]))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("err = %v, want size limit error", err)
	}
}

func TestInstructionStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Render("hello").String(), "Render(5 bytes)"},
		{RenderNone().String(), "Render(None)"},
		{Exit().String(), "Exit"},
		{NewClient(TerminalSize{Rows: 24, Cols: 80}).String(), "NewClient(24x80)"},
		{ActionInstruction(Action{Kind: ActionNewPane}).String(), "Action(NewPane)"},
		{ClientInstructionKind(99).String(), "ClientInstructionKind(99)"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
