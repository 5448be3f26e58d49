package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterTextMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, false)
	l.Emit(Event{ProcessID: "p1", NodeID: 3, Msg: "node_token_created", Meta: map[string]any{"arc_label": "ok"}})

	out := buf.String()
	if !strings.Contains(out, "node_token_created") || !strings.Contains(out, "process=p1") || !strings.Contains(out, "node=3") {
		t.Fatalf("expected text line to contain event fields, got %q", out)
	}
	if !strings.Contains(out, "arc_label") {
		t.Fatalf("expected meta to be rendered, got %q", out)
	}
}

func TestLogEmitterJSONMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, true)
	l.Emit(Event{ProcessID: "p1", NodeID: 3, Msg: "join_fired"})

	var decoded Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON line, got error %v for %q", err, buf.String())
	}
	if decoded.ProcessID != "p1" || decoded.NodeID != 3 || decoded.Msg != "join_fired" {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestNewLogEmitterDefaultsWriter(t *testing.T) {
	l := NewLogEmitter(nil, false)
	if l.writer == nil {
		t.Fatal("expected NewLogEmitter(nil, ...) to default to a non-nil writer")
	}
}
