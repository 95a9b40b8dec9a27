package sim

import "lorastat-sim/internal/stats"

// EventWriter receives every packet event as it is dispatched.
type EventWriter interface {
	WriteEvent(stats.Event) error
}

// SummaryWriter receives the final reduction of a run.
type SummaryWriter interface {
	WriteSummary(stats.RunSummary) error
}

// SampleWriter receives the hourly PDR series of a run.
type SampleWriter interface {
	WriteSamples(run int, samples []stats.HourlySample) error
}

// Optional: writers may support batch mode for events.
type batchEventWriter interface {
	WriteEvents([]stats.Event) error
}
