package stats

import (
	"fmt"
	"sync"
	"time"

	"lorastat-sim/internal/timeline"
)

// Params is the configuration the tracker consumes but does not own. It is
// validated once at construction; a malformed study fails before any event
// is processed.
type Params struct {
	// IMRDeadline and PCCDeadline are the per-class delivery deadlines.
	IMRDeadline time.Duration
	PCCDeadline time.Duration

	// AckMode enables confirmed-delivery accounting and changes the final
	// report layout.
	AckMode bool

	PayloadBytes int
	DeviceCount  int
	RunDuration  time.Duration
}

func (p Params) validate() error {
	if p.IMRDeadline <= 0 || p.PCCDeadline <= 0 {
		return fmt.Errorf("stats: deadlines must be positive (imr=%v pcc=%v)", p.IMRDeadline, p.PCCDeadline)
	}
	if p.PayloadBytes <= 0 {
		return fmt.Errorf("stats: payload size must be positive, got %d", p.PayloadBytes)
	}
	if p.DeviceCount <= 0 {
		return fmt.Errorf("stats: device count must be positive, got %d", p.DeviceCount)
	}
	if p.RunDuration <= 0 {
		return fmt.Errorf("stats: run duration must be positive, got %v", p.RunDuration)
	}
	return nil
}

func (p Params) deadline(c AppClass) time.Duration {
	if c == ClassPCC {
		return p.PCCDeadline
	}
	return p.IMRDeadline
}

// Tracker owns the packet ledger and every accumulator of one run. All fields
// are mutated only through its methods; the mutex serializes the event path
// against monitor reads so the ordering and idempotence invariants hold even
// when snapshots are taken mid-run.
type Tracker struct {
	mu     sync.Mutex
	params Params
	ledger *Ledger

	run int

	sent     int
	received int
	expired  int

	classSent     [numClasses]int
	classReceived [numClasses]int
	classDelaySum [numClasses]float64 // ms, delivered packets only

	delaySum float64 // ms, delivered packets only
	rssiSum  float64 // delivered packets only
	snrSum   float64

	// Frames-observed accumulators: one sample per physical reception,
	// success or not, so a packet heard by several gateways counts once per
	// gateway here while staying deduplicated in the delivery counters.
	framesObserved int
	frameRSSISum   float64
	frameSNRSum    float64

	lost           int
	lossCount      [numLossCauses]int
	lossPerRate    [numLossCauses][NumRateSettings]int
	expiredPerRate [NumRateSettings]int

	confirmedAcks    int
	requiredAttempts int

	unknownEvents      int
	duplicateFinalizes int

	// Interval-scoped counters for the hourly aggregator.
	sentThisHour     int
	receivedThisHour int
	hourly           []HourlySample

	energyJ float64

	rateDist      [NumRateSettings]int
	txPowerDist   [NumTxPowerLevels]int
	deviceSamples int
}

// New builds a tracker for one run. The run number only labels emitted rows.
func New(run int, p Params) (*Tracker, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Tracker{run: run, params: p, ledger: NewLedger()}, nil
}

// OnSent records a transmission start. Duplicate notifications for the same
// id are link-layer retransmissions: they increment the retransmission
// counter and leave the record and every send counter untouched.
func (t *Tracker) OnSent(id PacketID, device DeviceID, class AppClass, now time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ledger.RecordSent(id, device, class, now) {
		return
	}
	t.sent++
	t.sentThisHour++
	if class >= 0 && class < numClasses {
		t.classSent[class]++
	}
}

// OnDelivered handles a successful physical reception. The first reception
// of a packet decides Delivered vs Expired against the class deadline; later
// receptions by other gateways only feed the frames-observed averages.
func (t *Tracker) OnDelivered(id PacketID, now time.Duration, rssi, snr float64, rateIdx int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.ledger.Lookup(id)
	if !ok {
		// A receiver reported a packet this process never saw leaving.
		t.unknownEvents++
		return
	}
	t.observeFrame(rssi, snr)
	if rec.Finalized() {
		t.duplicateFinalizes++
		return
	}

	delay := now - rec.SentAt
	if delay <= t.params.deadline(rec.Class) {
		t.ledger.Finalize(id, StatusDelivered, delay)
		t.received++
		t.receivedThisHour++
		ms := durationMs(delay)
		t.delaySum += ms
		t.rssiSum += rssi
		t.snrSum += snr
		if rec.Class >= 0 && rec.Class < numClasses {
			t.classReceived[rec.Class]++
			t.classDelaySum[rec.Class] += ms
		}
		return
	}

	// Physically decoded but too late for its application.
	t.ledger.Finalize(id, StatusExpired, unset)
	t.expired++
	if rateIdx >= 0 && rateIdx < NumRateSettings {
		t.expiredPerRate[rateIdx]++
	}
}

// OnLostInterference tallies a reception destroyed by a colliding frame.
func (t *Tracker) OnLostInterference(id PacketID, rateIdx int, rssi, snr float64) {
	t.lose(LossInterference, rateIdx, rssi, snr)
}

// OnLostUnderSensitivity tallies a frame that arrived below the receiver's
// sensitivity floor.
func (t *Tracker) OnLostUnderSensitivity(id PacketID, rateIdx int, rssi, snr float64) {
	t.lose(LossUnderSensitivity, rateIdx, rssi, snr)
}

// OnLostNoReceivers tallies a frame dropped because every receive chain was
// occupied.
func (t *Tracker) OnLostNoReceivers(id PacketID, rateIdx int, rssi, snr float64) {
	t.lose(LossNoReceivers, rateIdx, rssi, snr)
}

// OnLostBusy tallies a frame missed while the gateway was transmitting.
func (t *Tracker) OnLostBusy(id PacketID, rateIdx int, rssi, snr float64) {
	t.lose(LossBusy, rateIdx, rssi, snr)
}

// lose records a loss observation. Loss events never consult finalization:
// every reporting receiver is tallied, including receivers that failed to
// decode a packet some other gateway delivered.
func (t *Tracker) lose(cause LossCause, rateIdx int, rssi, snr float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observeFrame(rssi, snr)
	t.lost++
	t.lossCount[cause]++
	if rateIdx >= 0 && rateIdx < NumRateSettings {
		t.lossPerRate[cause][rateIdx]++
	}
}

func (t *Tracker) observeFrame(rssi, snr float64) {
	t.framesObserved++
	t.frameRSSISum += rssi
	t.frameSNRSum += snr
}

// OnAcknowledgment correlates a confirmed delivery back to the first
// transmission attempt of the message. Only the first successful
// acknowledgment per packet is recorded; failures are no-ops.
func (t *Tracker) OnAcknowledgment(id PacketID, firstAttempt time.Duration, requiredAttempts int, success bool, now time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !success {
		return
	}
	rec, ok := t.ledger.Lookup(id)
	if !ok {
		t.unknownEvents++
		return
	}
	if rec.Acknowledged() {
		return
	}
	rec.AckDelay = now - firstAttempt
	t.confirmedAcks++
	t.requiredAttempts += requiredAttempts
}

// SetEnergyConsumption stores the externally computed total energy figure,
// in joules, used by the energy-efficiency ratios.
func (t *Tracker) SetEnergyConsumption(totalJ float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.energyJ = totalJ
}

// RecordDeviceSettings samples one device's final rate setting and transmit
// power for the distribution report. Called once per device at run end.
func (t *Tracker) RecordDeviceSettings(rateIdx, txPowerDbm int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deviceSamples++
	if rateIdx >= 0 && rateIdx < NumRateSettings {
		t.rateDist[rateIdx]++
	}
	if txPowerDbm >= 1 && txPowerDbm <= NumTxPowerLevels {
		t.txPowerDist[txPowerDbm-1]++
	}
}

// StartHourly schedules the periodic aggregator on tl. It samples once per
// interval and reschedules itself; the timeline's stop time bounds the
// series, so no explicit cancellation is needed.
func (t *Tracker) StartHourly(tl *timeline.Timeline, interval time.Duration) {
	tl.Schedule(interval, func() {
		t.SampleHour()
		t.StartHourly(tl, interval)
	})
}

// SampleHour appends one PDR sample from the interval counters and resets
// them for the next interval. Exposed so event-log replay can reproduce the
// interval boundaries without a timeline.
func (t *Tracker) SampleHour() {
	t.mu.Lock()
	defer t.mu.Unlock()
	pdr := 0.0
	if t.sentThisHour > 0 {
		pdr = float64(t.receivedThisHour) / float64(t.sentThisHour) * 100
	}
	if pdr > 100 {
		pdr = 100
	}
	t.hourly = append(t.hourly, HourlySample{Hour: len(t.hourly) + 1, PDR: pdr})
	t.sentThisHour = 0
	t.receivedThisHour = 0
}

// HourlySamples returns the ordered per-interval PDR series recorded so far.
func (t *Tracker) HourlySamples() []HourlySample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]HourlySample, len(t.hourly))
	copy(out, t.hourly)
	return out
}

// Retransmissions exposes the ledger's duplicate-send count.
func (t *Tracker) Retransmissions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Retransmissions()
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
