package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"lorastat-sim/internal/stats"
)

// ReplayLog feeds a JSONL event log from r into a fresh tracker and returns
// the recomputed summary and hourly series. An optional writer mirrors each
// event as it is replayed.
func ReplayLog(r io.Reader, run int, p stats.Params, writer EventWriter) (stats.RunSummary, []stats.HourlySample, error) {
	tracker, err := stats.New(run, p)
	if err != nil {
		return stats.RunSummary{}, nil, err
	}

	// Hourly samples are recomputed from event timestamps rather than a
	// timeline, so boundaries match the original run.
	hourMs := float64(3_600_000)
	nextHour := hourMs

	dec := json.NewDecoder(r)
	for {
		var ev stats.Event
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				break
			}
			return stats.RunSummary{}, nil, fmt.Errorf("decode event log: %w", err)
		}
		for ev.TimeMs >= nextHour {
			tracker.SampleHour()
			nextHour += hourMs
		}
		if err := ev.Apply(tracker); err != nil {
			return stats.RunSummary{}, nil, err
		}
		if writer != nil {
			if err := writer.WriteEvent(ev); err != nil {
				return stats.RunSummary{}, nil, err
			}
		}
	}
	for nextHour <= float64(p.RunDuration.Milliseconds()) {
		tracker.SampleHour()
		nextHour += hourMs
	}

	return tracker.FinalSummary(), tracker.HourlySamples(), nil
}

// ReplayLogFile opens a file and replays its packet events.
func ReplayLogFile(path string, run int, p stats.Params, writer EventWriter) (stats.RunSummary, []stats.HourlySample, error) {
	f, err := os.Open(path)
	if err != nil {
		return stats.RunSummary{}, nil, err
	}
	defer f.Close()
	return ReplayLog(f, run, p, writer)
}
