// YAML study configuration with CUE schema validation
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Channel defines the propagation model parameters.
type Channel struct {
	PathLossExponent float64 `yaml:"path_loss_exponent"`
	ReferenceLossDB  float64 `yaml:"reference_loss_db"`
	ShadowingSigmaDB float64 `yaml:"shadowing_sigma_db"`
}

// Energy defines the radio energy model of the end devices.
type Energy struct {
	VoltageV        float64 `yaml:"voltage_v"`
	TxCurrentA      float64 `yaml:"tx_current_a"`
	RxCurrentA      float64 `yaml:"rx_current_a"`
	StandbyCurrentA float64 `yaml:"standby_current_a"`
	SleepCurrentA   float64 `yaml:"sleep_current_a"`
}

// Study is the root configuration for one simulation study.
type Study struct {
	Devices      int     `yaml:"devices"`
	Gateways     int     `yaml:"gateways"`
	RadiusMeters float64 `yaml:"radius_m"`
	DurationS    int     `yaml:"duration_s"`
	Runs         int     `yaml:"runs"`
	Seed         int64   `yaml:"seed"`

	PayloadBytes int    `yaml:"payload_bytes"`
	TxMode       string `yaml:"tx_mode"` // "ack" or "nack"

	IMRPeriodS    int `yaml:"imr_period_s"`
	PCCPeriodS    int `yaml:"pcc_period_s"`
	IMRDeadlineMs int `yaml:"imr_deadline_ms"`
	PCCDeadlineMs int `yaml:"pcc_deadline_ms"`

	Channel Channel `yaml:"channel"`
	Energy  Energy  `yaml:"energy"`
}

// Duration returns the run duration.
func (s *Study) Duration() time.Duration { return time.Duration(s.DurationS) * time.Second }

// IMRPeriod returns the mean inter-transmission time of the latency-sensitive
// application.
func (s *Study) IMRPeriod() time.Duration { return time.Duration(s.IMRPeriodS) * time.Second }

// PCCPeriod returns the mean inter-transmission time of the billing
// application.
func (s *Study) PCCPeriod() time.Duration { return time.Duration(s.PCCPeriodS) * time.Second }

// IMRDeadline returns the latency-sensitive delivery deadline.
func (s *Study) IMRDeadline() time.Duration {
	return time.Duration(s.IMRDeadlineMs) * time.Millisecond
}

// PCCDeadline returns the billing delivery deadline.
func (s *Study) PCCDeadline() time.Duration {
	return time.Duration(s.PCCDeadlineMs) * time.Millisecond
}

// AckMode reports whether confirmed uplinks are simulated.
func (s *Study) AckMode() bool { return s.TxMode == "ack" }

// Load validates the YAML file against the CUE schema and unmarshals it.
func Load(configPath, cueSchemaPath string) (*Study, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse study config: %w", err)
	}
	return cfg, nil
}

// defaults mirrors the reference study: 200 smart meters, one gateway, a
// 7.5 km disc, 24 simulated hours.
func defaults() *Study {
	return &Study{
		Devices:       200,
		Gateways:      1,
		RadiusMeters:  7500,
		DurationS:     24 * 60 * 60,
		Runs:          1,
		Seed:          2,
		PayloadBytes:  51,
		TxMode:        "nack",
		IMRPeriodS:    12 * 60,
		PCCPeriodS:    60 * 60,
		IMRDeadlineMs: 60000,
		PCCDeadlineMs: 1000,
		Channel: Channel{
			PathLossExponent: 3.76,
			ReferenceLossDB:  7.7,
			ShadowingSigmaDB: 4.0,
		},
		Energy: Energy{
			VoltageV:        3.3,
			TxCurrentA:      0.028,
			RxCurrentA:      0.0112,
			StandbyCurrentA: 0.0014,
			SleepCurrentA:   0.0000015,
		},
	}
}
