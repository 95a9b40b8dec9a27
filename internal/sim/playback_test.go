package sim

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"lorastat-sim/internal/stats"
)

func replayParams() stats.Params {
	return stats.Params{
		IMRDeadline:  60 * time.Second,
		PCCDeadline:  time.Second,
		PayloadBytes: 51,
		DeviceCount:  10,
		RunDuration:  2 * time.Hour,
	}
}

func encodeEvents(t *testing.T, events []stats.Event) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return &buf
}

func TestReplayLogRecomputesSummary(t *testing.T) {
	events := []stats.Event{
		{Type: stats.EventSent, TimeMs: 1000, PacketID: 1, DeviceID: 4, Class: "imr"},
		{Type: stats.EventDelivered, TimeMs: 1050, PacketID: 1, RSSI: -100, SNR: 5, RateIdx: 0},
		{Type: stats.EventSent, TimeMs: 2000, PacketID: 2, DeviceID: 5, Class: "pcc"},
		{Type: stats.EventLostInterference, TimeMs: 2100, PacketID: 2, RSSI: -110, SNR: 0, RateIdx: 2},
	}
	cw := &MockEventWriter{}
	summary, samples, err := ReplayLog(encodeEvents(t, events), 1, replayParams(), cw)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}

	if summary.Sent != 2 || summary.Received != 1 {
		t.Fatalf("summary sent=%d received=%d, want 2/1", summary.Sent, summary.Received)
	}
	if summary.Loss.Interference != 1 {
		t.Errorf("interference losses = %d, want 1", summary.Loss.Interference)
	}
	if len(cw.Events) != len(events) {
		t.Errorf("mirrored %d events, want %d", len(cw.Events), len(events))
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 hourly samples for a 2h run, got %d", len(samples))
	}
	if samples[0].PDR != 50 {
		t.Errorf("hour 1 PDR = %f, want 50", samples[0].PDR)
	}
}

func TestReplayLogHourBoundaries(t *testing.T) {
	// One delivery in hour 1, one loss in hour 2.
	events := []stats.Event{
		{Type: stats.EventSent, TimeMs: 1000, PacketID: 1, Class: "imr"},
		{Type: stats.EventDelivered, TimeMs: 1100, PacketID: 1},
		{Type: stats.EventSent, TimeMs: 3_700_000, PacketID: 2, Class: "imr"},
		{Type: stats.EventLostBusy, TimeMs: 3_700_500, PacketID: 2},
	}
	_, samples, err := ReplayLog(encodeEvents(t, events), 1, replayParams(), nil)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].PDR != 100 {
		t.Errorf("hour 1 PDR = %f, want 100", samples[0].PDR)
	}
	if samples[1].PDR != 0 {
		t.Errorf("hour 2 PDR = %f, want 0", samples[1].PDR)
	}
}

func TestReplayLogRejectsCorruptEvents(t *testing.T) {
	events := []stats.Event{
		{Type: "bogus", TimeMs: 1000, PacketID: 1},
	}
	_, _, err := ReplayLog(encodeEvents(t, events), 1, replayParams(), nil)
	if err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}
