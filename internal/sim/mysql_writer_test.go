package sim

import (
	"database/sql"
	"strings"
	"testing"

	"lorastat-sim/internal/stats"
)

type mockMySQLConn struct {
	query  string
	arg    interface{}
	closed bool
}

func (m *mockMySQLConn) NamedExec(query string, arg interface{}) (sql.Result, error) {
	m.query = query
	m.arg = arg
	return nil, nil
}

func (m *mockMySQLConn) Close() error {
	m.closed = true
	return nil
}

func TestMySQLWriterSummaryRow(t *testing.T) {
	m := &mockMySQLConn{}
	w := &MySQLWriter{db: m}

	summary := stats.RunSummary{
		Run:             4,
		AckMode:         true,
		Sent:            200,
		Received:        180,
		PDR:             90,
		IMRPDR:          92.5,
		AvgDelayMs:      48.5,
		AvgRSSI:         -104.2,
		TotalEnergyJ:    312.7,
		Retransmissions: 12,
	}
	summary.Loss.Lost = 15
	summary.Loss.Expired = 5

	if err := w.WriteSummary(summary); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	row, ok := m.arg.(summaryRow)
	if !ok {
		t.Fatalf("arg is %T, want summaryRow", m.arg)
	}
	if row.Run != 4 || !row.AckMode || row.Sent != 200 || row.Received != 180 {
		t.Errorf("unexpected counters in row: %+v", row)
	}
	if row.PDR != 90 || row.IMRPDR != 92.5 || row.AvgDelayMs != 48.5 || row.AvgRSSI != -104.2 {
		t.Errorf("unexpected ratios in row: %+v", row)
	}
	if row.TotalEnergyJ != 312.7 || row.Retransmissions != 12 || row.Lost != 15 || row.Expired != 5 {
		t.Errorf("unexpected tallies in row: %+v", row)
	}

	for _, param := range []string{":run", ":ack_mode", ":pdr", ":avg_rssi", ":total_energy_j", ":retransmissions", ":expired"} {
		if !strings.Contains(m.query, param) {
			t.Errorf("query missing named parameter %s", param)
		}
	}
	if !strings.Contains(m.query, "INSERT INTO run_summaries") {
		t.Errorf("query does not target run_summaries: %s", m.query)
	}
}

func TestMySQLWriterClose(t *testing.T) {
	m := &mockMySQLConn{}
	w := &MySQLWriter{db: m}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !m.closed {
		t.Error("Close did not reach the connection")
	}
}
