package stats

import "strconv"

// HourlySample is one entry of the hourly PDR series.
type HourlySample struct {
	Hour int     `json:"hour"`
	PDR  float64 `json:"pdr_percent"`
}

// LossBreakdown partitions the never-delivered packets by cause. A packet
// may appear under more than one cause when several receivers failed on it
// for different reasons; that per-receiver view is intentional.
type LossBreakdown struct {
	Interference     int `json:"interference"`
	UnderSensitivity int `json:"under_sensitivity"`
	NoReceivers      int `json:"no_receivers"`
	Busy             int `json:"busy"`
	Expired          int `json:"expired"`
	Lost             int `json:"lost"`

	// Percentages relative to the lost superset.
	InterferencePercent     float64 `json:"interference_percent"`
	UnderSensitivityPercent float64 `json:"under_sensitivity_percent"`
	NoReceiversPercent      float64 `json:"no_receivers_percent"`
	BusyPercent             float64 `json:"busy_percent"`
	ExpiredPercent          float64 `json:"expired_percent"`

	InterferencePerRate [NumRateSettings]int `json:"interference_per_rate"`
}

// InterferenceRatePercent returns the share of interference losses that
// happened at the given rate-setting index, as a percentage.
func (l LossBreakdown) InterferenceRatePercent(rateIdx int) float64 {
	if rateIdx < 0 || rateIdx >= NumRateSettings || l.Interference == 0 {
		return 0
	}
	return float64(l.InterferencePerRate[rateIdx]) / float64(l.Interference) * 100
}

// RunSummary is the final reduction of one run. It is computed once at run
// end and never mutated afterward. Every ratio defaults to zero when its
// denominator is zero.
type RunSummary struct {
	Run     int  `json:"run"`
	AckMode bool `json:"ack_mode"`

	Sent     int     `json:"sent"`
	Received int     `json:"received"`
	PDR      float64 `json:"pdr"`

	IMRSent     int     `json:"imr_sent"`
	IMRReceived int     `json:"imr_received"`
	IMRPDR      float64 `json:"imr_pdr"`
	PCCSent     int     `json:"pcc_sent"`
	PCCReceived int     `json:"pcc_received"`
	PCCPDR      float64 `json:"pcc_pdr"`

	AvgDelayMs    float64 `json:"avg_delay_ms"`
	IMRAvgDelayMs float64 `json:"imr_avg_delay_ms"`
	PCCAvgDelayMs float64 `json:"pcc_avg_delay_ms"`

	// Averages over delivered packets only.
	AvgRSSI float64 `json:"avg_rssi"`
	AvgSNR  float64 `json:"avg_snr"`
	// Averages over every physically received frame, duplicates included.
	AvgFrameRSSI float64 `json:"avg_frame_rssi"`
	AvgFrameSNR  float64 `json:"avg_frame_snr"`

	TotalEnergyJ     float64 `json:"total_energy_j"`
	EnergyPerDeviceJ float64 `json:"energy_per_device_j"`
	ThroughputBps    float64 `json:"throughput_bps"`

	BitsPerJoule                 float64 `json:"bits_per_joule"`
	BitsPerJoulePerDevice        float64 `json:"bits_per_joule_per_device"`
	ThroughputPerEnergyPerDevice float64 `json:"throughput_per_energy_per_device"`
	ThroughputPerJoule           float64 `json:"throughput_per_joule"`

	Retransmissions      int     `json:"retransmissions"`
	RequiredAttempts     int     `json:"required_attempts"`
	ConfirmedAcks        int     `json:"confirmed_acks"`
	ConfirmedSuccessRate float64 `json:"confirmed_success_rate"`

	Loss LossBreakdown `json:"loss"`

	// Share of devices per rate setting / transmit-power level.
	RateSettingPercent [NumRateSettings]float64  `json:"rate_setting_percent"`
	TxPowerPercent     [NumTxPowerLevels]float64 `json:"tx_power_percent"`
}

// FinalSummary reduces the ledger and counters into the run's final figures.
func (t *Tracker) FinalSummary() RunSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := RunSummary{
		Run:              t.run,
		AckMode:          t.params.AckMode,
		Sent:             t.sent,
		Received:         t.received,
		IMRSent:          t.classSent[ClassIMR],
		IMRReceived:      t.classReceived[ClassIMR],
		PCCSent:          t.classSent[ClassPCC],
		PCCReceived:      t.classReceived[ClassPCC],
		TotalEnergyJ:     t.energyJ,
		Retransmissions:  t.ledger.Retransmissions(),
		RequiredAttempts: t.requiredAttempts,
		ConfirmedAcks:    t.confirmedAcks,
	}

	s.PDR = ratio(t.received, t.sent) * 100
	s.IMRPDR = ratio(t.classReceived[ClassIMR], t.classSent[ClassIMR]) * 100
	s.PCCPDR = ratio(t.classReceived[ClassPCC], t.classSent[ClassPCC]) * 100

	s.AvgDelayMs = div(t.delaySum, float64(t.received))
	s.IMRAvgDelayMs = div(t.classDelaySum[ClassIMR], float64(t.classReceived[ClassIMR]))
	s.PCCAvgDelayMs = div(t.classDelaySum[ClassPCC], float64(t.classReceived[ClassPCC]))

	s.AvgRSSI = div(t.rssiSum, float64(t.received))
	s.AvgSNR = div(t.snrSum, float64(t.received))
	s.AvgFrameRSSI = div(t.frameRSSISum, float64(t.framesObserved))
	s.AvgFrameSNR = div(t.frameSNRSum, float64(t.framesObserved))

	s.EnergyPerDeviceJ = div(t.energyJ, float64(t.params.DeviceCount))

	receivedBits := float64(t.received * t.params.PayloadBytes * 8)
	runSeconds := t.params.RunDuration.Seconds()
	s.ThroughputBps = div(receivedBits, runSeconds)
	s.BitsPerJoule = div(receivedBits, t.energyJ)
	s.BitsPerJoulePerDevice = div(receivedBits, s.EnergyPerDeviceJ)
	s.ThroughputPerEnergyPerDevice = div(s.ThroughputBps, s.EnergyPerDeviceJ)
	s.ThroughputPerJoule = div(s.ThroughputBps, t.energyJ)

	s.ConfirmedSuccessRate = ratio(t.confirmedAcks, t.received) * 100

	s.Loss = LossBreakdown{
		Interference:        t.lossCount[LossInterference],
		UnderSensitivity:    t.lossCount[LossUnderSensitivity],
		NoReceivers:         t.lossCount[LossNoReceivers],
		Busy:                t.lossCount[LossBusy],
		Expired:             t.expired,
		Lost:                t.lost,
		InterferencePerRate: t.lossPerRate[LossInterference],
	}
	s.Loss.InterferencePercent = ratio(s.Loss.Interference, t.lost) * 100
	s.Loss.UnderSensitivityPercent = ratio(s.Loss.UnderSensitivity, t.lost) * 100
	s.Loss.NoReceiversPercent = ratio(s.Loss.NoReceivers, t.lost) * 100
	s.Loss.BusyPercent = ratio(s.Loss.Busy, t.lost) * 100
	s.Loss.ExpiredPercent = ratio(t.expired, t.lost) * 100

	for i := 0; i < NumRateSettings; i++ {
		s.RateSettingPercent[i] = ratio(t.rateDist[i], t.deviceSamples) * 100
	}
	for i := 0; i < NumTxPowerLevels; i++ {
		s.TxPowerPercent[i] = ratio(t.txPowerDist[i], t.deviceSamples) * 100
	}

	return s
}

// DataRow renders the summary as the flat ordered record of the main report.
// Acknowledged mode swaps the per-class delay columns for the confirmed
// delivery columns.
func (s RunSummary) DataRow() []string {
	row := []string{
		strconv.Itoa(s.Sent),
		strconv.Itoa(s.Received),
		f(s.PDR),
		strconv.Itoa(s.IMRSent),
		strconv.Itoa(s.IMRReceived),
		f(s.IMRPDR),
		strconv.Itoa(s.PCCSent),
		strconv.Itoa(s.PCCReceived),
		f(s.PCCPDR),
		f(s.AvgDelayMs),
	}
	if !s.AckMode {
		row = append(row, f(s.IMRAvgDelayMs), f(s.PCCAvgDelayMs))
	}
	row = append(row,
		f(s.AvgRSSI),
		f(s.AvgSNR),
		f(s.EnergyPerDeviceJ),
		f(s.ThroughputBps),
		f(s.BitsPerJoule),
		f(s.BitsPerJoulePerDevice),
		f(s.ThroughputPerEnergyPerDevice),
		f(s.ThroughputPerJoule),
	)
	if s.AckMode {
		row = append(row,
			strconv.Itoa(s.RequiredAttempts),
			strconv.Itoa(s.ConfirmedAcks),
			f(s.ConfirmedSuccessRate),
		)
	}
	row = append(row, f(s.AvgFrameRSSI), f(s.AvgFrameSNR), strconv.Itoa(s.Run))
	return row
}

// LossRow renders the loss-cause breakdown report row.
func (s RunSummary) LossRow() []string {
	row := []string{
		strconv.Itoa(s.Loss.Interference),
		strconv.Itoa(s.Loss.UnderSensitivity),
		strconv.Itoa(s.Loss.NoReceivers),
		strconv.Itoa(s.Loss.Busy),
		strconv.Itoa(s.Loss.Expired),
		strconv.Itoa(s.Loss.Lost),
		f(s.Loss.InterferencePercent),
		f(s.Loss.UnderSensitivityPercent),
		f(s.Loss.NoReceiversPercent),
		f(s.Loss.BusyPercent),
		f(s.Loss.ExpiredPercent),
	}
	for i := 0; i < NumRateSettings; i++ {
		row = append(row, f(s.Loss.InterferenceRatePercent(i)))
	}
	return append(row, strconv.Itoa(s.Run))
}

// DistributionRow renders the rate-setting and transmit-power distributions.
func (s RunSummary) DistributionRow() []string {
	var row []string
	for i := 0; i < NumRateSettings; i++ {
		row = append(row, f(s.RateSettingPercent[i]))
	}
	for i := 0; i < NumTxPowerLevels; i++ {
		row = append(row, f(s.TxPowerPercent[i]))
	}
	return append(row, strconv.Itoa(s.Run))
}

// Snapshot is a cheap mid-run view for live monitoring.
type Snapshot struct {
	Run             int     `json:"run"`
	Sent            int     `json:"sent"`
	Received        int     `json:"received"`
	Expired         int     `json:"expired"`
	Lost            int     `json:"lost"`
	Retransmissions int     `json:"retransmissions"`
	ConfirmedAcks   int     `json:"confirmed_acks"`
	UnknownEvents   int     `json:"unknown_events"`
	PDR             float64 `json:"pdr"`
}

// SnapshotNow returns the current counter values without finalizing.
func (t *Tracker) SnapshotNow() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Run:             t.run,
		Sent:            t.sent,
		Received:        t.received,
		Expired:         t.expired,
		Lost:            t.lost,
		Retransmissions: t.ledger.Retransmissions(),
		ConfirmedAcks:   t.confirmedAcks,
		UnknownEvents:   t.unknownEvents,
		PDR:             ratio(t.received, t.sent) * 100,
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func div(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
