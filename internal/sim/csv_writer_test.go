package sim

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"lorastat-sim/internal/stats"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVWriterAppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, 1)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	for run := 1; run <= 2; run++ {
		if err := w.WriteSummary(stats.RunSummary{Run: run, Sent: 10 * run}); err != nil {
			t.Fatalf("WriteSummary: %v", err)
		}
	}

	rows := readCSV(t, filepath.Join(dir, "1gw_data.csv"))
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	if rows[0][0] != "10" || rows[1][0] != "20" {
		t.Errorf("unexpected sent columns: %q %q", rows[0][0], rows[1][0])
	}
	// Each run ends with its run number.
	if last := rows[1][len(rows[1])-1]; last != "2" {
		t.Errorf("run column = %q, want 2", last)
	}

	if rows := readCSV(t, filepath.Join(dir, "1gw_losses.csv")); len(rows) != 2 {
		t.Errorf("expected 2 loss rows, got %d", len(rows))
	}
	if rows := readCSV(t, filepath.Join(dir, "1gw_sf_tp.csv")); len(rows) != 2 {
		t.Errorf("expected 2 distribution rows, got %d", len(rows))
	}
}

func TestCSVWriterSamplesPerRun(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, 2)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	samples := []stats.HourlySample{{Hour: 1, PDR: 97.5}, {Hour: 2, PDR: 88}}
	if err := w.WriteSamples(4, samples); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "pdrs_4.csv"))
	if len(rows) != 2 {
		t.Fatalf("expected 2 sample rows, got %d", len(rows))
	}
	if rows[0][0] != "1" || rows[0][1] != "97.5" {
		t.Errorf("unexpected first sample row: %v", rows[0])
	}
}
