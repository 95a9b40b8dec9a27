package sim

import (
	"testing"

	"lorastat-sim/internal/stats"
)

type collectAllWriter struct {
	events    []stats.Event
	batches   int
	summaries []stats.RunSummary
	samples   [][]stats.HourlySample
}

func (c *collectAllWriter) WriteEvent(e stats.Event) error {
	c.events = append(c.events, e)
	return nil
}

func (c *collectAllWriter) WriteSummary(s stats.RunSummary) error {
	c.summaries = append(c.summaries, s)
	return nil
}

func (c *collectAllWriter) WriteSamples(run int, samples []stats.HourlySample) error {
	c.samples = append(c.samples, samples)
	return nil
}

type batchOnlyWriter struct {
	collectAllWriter
}

func (b *batchOnlyWriter) WriteEvents(events []stats.Event) error {
	b.batches++
	b.events = append(b.events, events...)
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &collectAllWriter{}
	b := &collectAllWriter{}
	mw := NewMultiWriter(
		[]EventWriter{a, b},
		[]SummaryWriter{a},
		[]SampleWriter{b},
	)

	ev := stats.Event{Type: stats.EventSent, PacketID: 1}
	if err := mw.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("event not fanned out: %d %d", len(a.events), len(b.events))
	}

	if err := mw.WriteSummary(stats.RunSummary{Run: 3}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if len(a.summaries) != 1 || a.summaries[0].Run != 3 {
		t.Fatalf("summary not forwarded")
	}

	if err := mw.WriteSamples(3, []stats.HourlySample{{Hour: 1, PDR: 50}}); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if len(b.samples) != 1 {
		t.Fatalf("samples not forwarded")
	}
}

func TestMultiWriterUsesBatchWhenSupported(t *testing.T) {
	plain := &collectAllWriter{}
	batch := &batchOnlyWriter{}
	mw := NewMultiWriter([]EventWriter{plain, batch}, nil, nil)

	events := []stats.Event{
		{Type: stats.EventSent, PacketID: 1},
		{Type: stats.EventDelivered, PacketID: 1},
	}
	if err := mw.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if len(plain.events) != 2 {
		t.Errorf("plain writer got %d events, want 2", len(plain.events))
	}
	if batch.batches != 1 || len(batch.events) != 2 {
		t.Errorf("batch writer: batches=%d events=%d, want 1 batch with 2 events",
			batch.batches, len(batch.events))
	}
}
