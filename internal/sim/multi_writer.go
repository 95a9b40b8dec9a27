package sim

import "lorastat-sim/internal/stats"

// MultiWriter fan-outs events, summaries, and samples to multiple writers.
type MultiWriter struct {
	eventWriters   []EventWriter
	summaryWriters []SummaryWriter
	sampleWriters  []SampleWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ews []EventWriter, sws []SummaryWriter, pws []SampleWriter) *MultiWriter {
	return &MultiWriter{eventWriters: ews, summaryWriters: sws, sampleWriters: pws}
}

// WriteEvent sends a packet event to all event writers.
func (mw *MultiWriter) WriteEvent(e stats.Event) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple events to all event writers, using batch if
// supported.
func (mw *MultiWriter) WriteEvents(events []stats.Event) error {
	for _, w := range mw.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(events); err != nil {
				return err
			}
			continue
		}
		for _, e := range events {
			if err := w.WriteEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSummary sends the run summary to all summary writers.
func (mw *MultiWriter) WriteSummary(s stats.RunSummary) error {
	for _, w := range mw.summaryWriters {
		if err := w.WriteSummary(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteSamples sends the hourly series to all sample writers.
func (mw *MultiWriter) WriteSamples(run int, samples []stats.HourlySample) error {
	for _, w := range mw.sampleWriters {
		if err := w.WriteSamples(run, samples); err != nil {
			return err
		}
	}
	return nil
}
