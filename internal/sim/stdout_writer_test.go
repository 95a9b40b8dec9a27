package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"lorastat-sim/internal/stats"
)

func TestJSONStdoutWriterEvent(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}

	ev := stats.Event{Type: stats.EventLostBusy, TimeMs: 500, PacketID: 7, RateIdx: 3}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}

	var got stats.Event
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != stats.EventLostBusy || got.PacketID != 7 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestJSONStdoutWriterSamplesCarryRun(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}

	err := w.WriteSamples(2, []stats.HourlySample{{Hour: 1, PDR: 90}, {Hour: 2, PDR: 85}})
	if err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var row struct {
		Run  int     `json:"run"`
		Hour int     `json:"hour"`
		PDR  float64 `json:"pdr"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if row.Run != 2 || row.Hour != 1 || row.PDR != 90 {
		t.Errorf("unexpected sample row: %+v", row)
	}
}

func TestColorStdoutWriterSummary(t *testing.T) {
	var buf bytes.Buffer
	w := &ColorStdoutWriter{out: &buf}

	err := w.WriteSummary(stats.RunSummary{Run: 1, Sent: 100, Received: 90, PDR: 90})
	if err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "pdr") || !strings.Contains(out, "90.00%") {
		t.Errorf("summary output missing fields: %q", out)
	}
}

func TestColorStdoutWriterEventPlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	w := &ColorStdoutWriter{out: &buf}

	ev := stats.Event{Type: stats.EventDelivered, TimeMs: 1200, PacketID: 3, Class: "pcc", RSSI: -101, SNR: 2}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI escapes without a terminal: %q", out)
	}
	if !strings.Contains(out, "delivered") || !strings.Contains(out, "pkt=3") {
		t.Errorf("event line missing fields: %q", out)
	}
}
