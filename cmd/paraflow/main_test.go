package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestReadSwitch(t *testing.T) {
	cases := map[string]switchMode{"": modeAuto, "AUTO": modeAuto, " on ": modeOn, "off": modeOff}
	for in, want := range cases {
		got, err := readSwitch("color", in)
		if err != nil || got != want {
			t.Fatalf("readSwitch(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readSwitch("ui", "sometimes"); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}

func TestUseColorHonoursOverrides(t *testing.T) {
	if !useColor(modeOn, os.Stdout) || useColor(modeOff, os.Stdout) {
		t.Fatalf("explicit modes must win")
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf, true); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "paraflow" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload %+v", payload)
	}
}

func TestValidStage(t *testing.T) {
	if !validStage("fold") || validStage("codegen") {
		t.Fatalf("validStage mismatch")
	}
}
