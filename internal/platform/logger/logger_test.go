package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time { return time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC) }

func TestText_Logfmt(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Info, App: "petchat", Output: &buf, Now: fixedNow})

	log.With(map[string]any{"trainer": "ash ketchum"}).Warn("touch failed", map[string]any{
		"err":     errors.New("status=503"),
		"elapsed": 1500 * time.Millisecond,
		"empty":   "",
	})

	want := `ts=2026-05-20T15:30:00Z level=warn msg="touch failed" app=petchat elapsed=1.5s empty="" err="status=503" trainer="ash ketchum"`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("unexpected line\n got: %s\nwant: %s", got, want)
	}
}

func TestJSON_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Debug, Format: FormatJSON, Output: &buf, Now: fixedNow})

	log.Error("chat failed", map[string]any{"err": errors.New("boom"), "status": 502, " ": "ignored"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json line: %v (%s)", err, buf.String())
	}
	if entry["err"] != "boom" || entry["status"] != float64(502) || entry["level"] != "error" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry[" "]; ok {
		t.Fatalf("blank keys must be dropped")
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: ParseLevel("WARN"), Output: &buf, Now: fixedNow})

	log.Info("hidden", nil)
	log.Debug("hidden", nil)
	log.Warn("shown", nil)

	if strings.Count(buf.String(), "\n") != 1 || !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWith_DoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Output: &buf, Now: fixedNow})
	_ = parent.With(map[string]any{"component": "backendapi"})

	parent.Info("plain", nil)
	if strings.Contains(buf.String(), "component") {
		t.Fatalf("child fields leaked into parent: %s", buf.String())
	}
}

func TestParse(t *testing.T) {
	if ParseLevel("") != Info || ParseLevel("nonsense") != Info || ParseLevel("warning") != Warn {
		t.Fatalf("unexpected level parsing")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("unexpected format parsing")
	}
	if OrNop(nil) == nil {
		t.Fatalf("OrNop must never return nil")
	}
}
