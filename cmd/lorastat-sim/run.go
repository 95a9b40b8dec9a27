package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lorastat-sim/internal/admin"
	"lorastat-sim/internal/config"
	"lorastat-sim/internal/logging"
	"lorastat-sim/internal/sim"
)

var (
	runPrintOnly  bool
	runConfigPath string
	runSchemaPath string
	runOutDir     string
	runLogFile    string
	runMonitor    string
	runTUI        bool
	runCount      int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the packet outcome study",
	Long:  "run executes the configured number of study runs and reports per-run statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		if runCount > 0 {
			cfg.Runs = runCount
		}

		var tui *sim.TUIWriter
		if runTUI {
			tui = sim.NewTUIWriter(cfg)
			defer tui.Close()
		}

		writers, cleanup, err := newWriters(cfg, runPrintOnly, runLogFile, runOutDir, tui)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := logging.NewContext(context.Background(), logging.New())

		var server *admin.Server
		var metrics *admin.MetricsCollector
		var reg *prometheus.Registry
		if runMonitor != "" {
			reg = prometheus.NewRegistry()
			metrics = admin.NewMetricsCollector(reg)
		}

		for run := 1; run <= cfg.Runs; run++ {
			events := writers.events
			if metrics != nil {
				events = sim.NewMultiWriter([]sim.EventWriter{writers.events, metrics}, nil, nil)
			}
			simulator, err := sim.NewSimulator(run, cfg, events)
			if err != nil {
				return err
			}

			if runMonitor != "" {
				if server == nil {
					server = admin.NewServer(simulator, reg)
					go func() {
						log.Printf("[Main] Study monitor listening on %s", runMonitor)
						if err := server.Start(runMonitor); err != nil && err != http.ErrServerClosed {
							log.Fatalf("Monitor server failed: %v", err)
						}
					}()
				} else {
					server.SetSim(simulator)
				}
			}

			summary, samples, err := simulator.Run(ctx)
			if err != nil {
				return err
			}
			if tui != nil {
				tui.WriteSnapshot(simulator.Tracker().SnapshotNow())
			}
			if err := writers.summaries.WriteSummary(summary); err != nil {
				return err
			}
			if err := writers.samples.WriteSamples(run, samples); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print results to STDOUT instead of writing to external sinks")
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/study.yaml", "Path to study configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/study.cue", "Path to CUE schema file")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "Directory for CSV report files")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export the packet event log (JSONL)")
	runCmd.Flags().StringVar(&runMonitor, "monitor", ":8080", "Study monitor listen address (empty to disable)")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Render a live TUI instead of plain STDOUT output")
	runCmd.Flags().IntVar(&runCount, "runs", 0, "Override the configured number of runs")
}
