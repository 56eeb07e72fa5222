package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestProdWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := setup(EnvProd, &buf)
	log.Debug("hidden")
	log.Info("listing approved", Err(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "listing approved" || rec["error"] != "boom" {
		t.Fatalf("record = %v", rec)
	}
}

func TestLocalIsTextWithDebug(t *testing.T) {
	var buf bytes.Buffer
	setup(EnvLocal, &buf).Debug("draft flushed")
	if !strings.Contains(buf.String(), "msg=\"draft flushed\"") {
		t.Fatalf("text output = %q", buf.String())
	}
}
