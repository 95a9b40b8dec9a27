package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"lorastat-sim/internal/stats"
)

// JSONStdoutWriter prints summaries, hourly samples, and events as JSON to
// STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteSummary outputs a run summary in JSON format.
func (w *JSONStdoutWriter) WriteSummary(s stats.RunSummary) error {
	data, _ := json.Marshal(s)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteSamples outputs the hourly PDR series in JSON format.
func (w *JSONStdoutWriter) WriteSamples(run int, samples []stats.HourlySample) error {
	for _, s := range samples {
		data, _ := json.Marshal(struct {
			Run int `json:"run"`
			stats.HourlySample
		}{Run: run, HourlySample: s})
		fmt.Fprintln(w.out, string(data))
	}
	return nil
}

// WriteEvent outputs a packet event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e stats.Event) error {
	data, _ := json.Marshal(e)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvents outputs multiple packet events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(events []stats.Event) error {
	for _, e := range events {
		_ = w.WriteEvent(e)
	}
	return nil
}
