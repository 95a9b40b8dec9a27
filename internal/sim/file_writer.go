package sim

import (
	"encoding/json"
	"os"

	"lorastat-sim/internal/stats"
)

// FileWriter writes events and run summaries to JSONL files.
type FileWriter struct {
	eventFile   *os.File
	summaryFile *os.File
	eventEnc    *json.Encoder
	summaryEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. summaryPath may be empty to log events
// only.
func NewFileWriter(eventPath, summaryPath string) (*FileWriter, error) {
	ef, err := os.Create(eventPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventFile: ef, eventEnc: json.NewEncoder(ef)}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			ef.Close()
			return nil, err
		}
		fw.summaryFile = sf
		fw.summaryEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteEvent logs a single packet event.
func (f *FileWriter) WriteEvent(e stats.Event) error {
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple packet events.
func (f *FileWriter) WriteEvents(events []stats.Event) error {
	for _, e := range events {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs the run summary, if enabled.
func (f *FileWriter) WriteSummary(s stats.RunSummary) error {
	if f.summaryEnc == nil {
		return nil
	}
	return f.summaryEnc.Encode(s)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.summaryFile != nil {
		if e := f.summaryFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
