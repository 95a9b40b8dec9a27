package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lorastat-sim/internal/stats"
)

// CSVWriter appends run results to the study's report files. Summaries go to
// three files keyed by gateway count so runs of the same topology accumulate,
// and each run's hourly PDR series gets its own file.
type CSVWriter struct {
	dir    string
	prefix string
}

// NewCSVWriter creates a CSVWriter rooted at dir.
func NewCSVWriter(dir string, gateways int) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &CSVWriter{dir: dir, prefix: fmt.Sprintf("%dgw", gateways)}, nil
}

// WriteSummary appends the run's rows to the data, losses, and distribution
// reports.
func (w *CSVWriter) WriteSummary(s stats.RunSummary) error {
	if err := w.appendRow(w.prefix+"_data.csv", s.DataRow()); err != nil {
		return err
	}
	if err := w.appendRow(w.prefix+"_losses.csv", s.LossRow()); err != nil {
		return err
	}
	return w.appendRow(w.prefix+"_sf_tp.csv", s.DistributionRow())
}

// WriteSamples writes the hourly PDR series of one run.
func (w *CSVWriter) WriteSamples(run int, samples []stats.HourlySample) error {
	f, err := os.Create(filepath.Join(w.dir, fmt.Sprintf("pdrs_%d.csv", run)))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	for _, s := range samples {
		if err := cw.Write([]string{strconv.Itoa(s.Hour), formatFloat(s.PDR)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *CSVWriter) appendRow(name string, row []string) error {
	f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
