package sim

import (
	"context"
	"log"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"lorastat-sim/internal/stats"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes packet events and hourly PDR samples to GreptimeDB
// via the ingester client. Tables are auto-created on first ingest.
type GreptimeDBWriter struct {
	client      greptimeClient
	eventTable  string
	sampleTable string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:      client,
		eventTable:  "packet_events",
		sampleTable: "hourly_pdr",
	}, nil
}

// WriteEvent inserts a single packet event.
func (w *GreptimeDBWriter) WriteEvent(e stats.Event) error {
	return w.WriteEvents([]stats.Event{e})
}

// WriteEvents inserts multiple packet events.
func (w *GreptimeDBWriter) WriteEvents(events []stats.Event) error {
	if len(events) == 0 {
		return nil
	}

	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("event_type", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("class", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("packet_id", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("device_id", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("sim_time_ms", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("rate_index", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("rssi", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("snr", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	now := time.Now()
	for _, e := range events {
		err := tbl.AddRow(string(e.Type), e.Class,
			int64(e.PacketID), int64(e.DeviceID), e.TimeMs, int64(e.RateIdx),
			e.RSSI, e.SNR, now)
		if err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	return nil
}

// WriteSamples inserts the hourly PDR series of one run.
func (w *GreptimeDBWriter) WriteSamples(run int, samples []stats.HourlySample) error {
	if len(samples) == 0 {
		return nil
	}

	tbl, err := table.New(w.sampleTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("run", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("hour", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("pdr", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	now := time.Now()
	for _, s := range samples {
		if err := tbl.AddRow(strconv.Itoa(run), int64(s.Hour), s.PDR, now); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}

	log.Printf("[GreptimeDBWriter] wrote %d hourly samples", len(samples))
	return nil
}
