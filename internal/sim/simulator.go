// Simulator orchestrating end devices, gateways, and the outcome tracker
package sim

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"lorastat-sim/internal/config"
	"lorastat-sim/internal/logging"
	"lorastat-sim/internal/stats"
	"lorastat-sim/internal/timeline"
)

// Acknowledged-mode retransmission policy of a class-A device.
const (
	maxAttempts  = 8
	ackDelay     = time.Second
	retryBackoff = 2 * time.Second
	retryJitterS = 2.0
)

// transmission is one logical uplink, carried through its retransmission
// attempts in acknowledged mode.
type transmission struct {
	id      stats.PacketID
	dev     *Device
	class   stats.AppClass
	rateIdx int

	start, end   time.Duration
	firstAttempt time.Duration
	attempts     int

	// rx holds the shadowed received power per gateway, drawn once per
	// attempt so collision checks see stable values.
	rx []float64
}

// Simulator drives one run of the study on a virtual timeline.
type Simulator struct {
	RunID string

	cfg     *config.Study
	run     int
	tracker *stats.Tracker
	tl      *timeline.Timeline
	ch      *channelModel
	rng     *rand.Rand

	devices  []*Device
	gateways []*Gateway

	events EventWriter

	nextID stats.PacketID
	active []*transmission
}

// NewSimulator places the topology and builds the tracker for one run.
// events may be nil when no event sink is configured.
func NewSimulator(run int, cfg *config.Study, events EventWriter) (*Simulator, error) {
	tracker, err := stats.New(run, stats.Params{
		IMRDeadline:  cfg.IMRDeadline(),
		PCCDeadline:  cfg.PCCDeadline(),
		AckMode:      cfg.AckMode(),
		PayloadBytes: cfg.PayloadBytes,
		DeviceCount:  cfg.Devices,
		RunDuration:  cfg.Duration(),
	})
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed + int64(run)))
	s := &Simulator{
		RunID:   uuid.New().String(),
		cfg:     cfg,
		run:     run,
		tracker: tracker,
		tl:      timeline.New(cfg.Duration()),
		ch:      newChannelModel(cfg.Channel, rng),
		rng:     rng,
		events:  events,
		nextID:  1,
	}

	s.placeGateways()
	s.placeDevices()
	for _, d := range s.devices {
		d.RateIdx = allocateRate(s.ch, d, s.gateways)
	}
	return s, nil
}

// placeGateways puts a single gateway at the disc center, or spreads several
// evenly on a circle of half the deployment radius.
func (s *Simulator) placeGateways() {
	n := s.cfg.Gateways
	if n <= 1 {
		s.gateways = []*Gateway{newGateway(0, 0, 0)}
		return
	}
	r := s.cfg.RadiusMeters / 2
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * 2 * math.Pi
		s.gateways = append(s.gateways, newGateway(i, r*math.Cos(angle), r*math.Sin(angle)))
	}
}

// placeDevices distributes the end devices uniformly on the deployment disc.
func (s *Simulator) placeDevices() {
	for i := 0; i < s.cfg.Devices; i++ {
		r := s.cfg.RadiusMeters * math.Sqrt(s.rng.Float64())
		angle := s.rng.Float64() * 2 * math.Pi
		s.devices = append(s.devices, &Device{
			ID:         stats.DeviceID(i),
			X:          r * math.Cos(angle),
			Y:          r * math.Sin(angle),
			TxPowerDbm: defaultTxPowerDbm,
		})
	}
}

// Tracker exposes the run's tracker for live monitoring.
func (s *Simulator) Tracker() *stats.Tracker { return s.tracker }

// Run executes the whole study run on the virtual timeline and returns the
// final reduction and the hourly PDR series.
func (s *Simulator) Run(ctx context.Context) (stats.RunSummary, []stats.HourlySample, error) {
	log := logging.FromContext(ctx)
	log.Info("starting run",
		"run", s.run,
		"run_id", s.RunID,
		"devices", len(s.devices),
		"gateways", len(s.gateways),
		"duration", s.cfg.Duration(),
		"tx_mode", s.cfg.TxMode)

	s.tracker.StartHourly(s.tl, time.Hour)
	for _, d := range s.devices {
		s.scheduleApp(d, stats.ClassIMR, s.cfg.IMRPeriod())
		s.scheduleApp(d, stats.ClassPCC, s.cfg.PCCPeriod())
	}

	s.tl.Run()

	s.finishRun()
	summary := s.tracker.FinalSummary()
	samples := s.tracker.HourlySamples()
	log.Info("run finished",
		"run", s.run,
		"sent", summary.Sent,
		"received", summary.Received,
		"pdr", summary.PDR,
		"lost", summary.Loss.Lost,
		"expired", summary.Loss.Expired)
	return summary, samples, nil
}

// scheduleApp starts one Poisson application on a device: a uniformly
// distributed first send, then exponential inter-arrival times around the
// configured mean period.
func (s *Simulator) scheduleApp(d *Device, class stats.AppClass, mean time.Duration) {
	var fire func()
	fire = func() {
		s.sendNew(d, class)
		s.tl.Schedule(expDuration(s.rng, mean), fire)
	}
	s.tl.Schedule(time.Duration(s.rng.Float64()*float64(mean)), fire)
}

// sendNew starts a fresh logical uplink.
func (s *Simulator) sendNew(d *Device, class stats.AppClass) {
	tx := &transmission{
		id:           s.nextID,
		dev:          d,
		class:        class,
		rateIdx:      d.RateIdx,
		firstAttempt: s.tl.Now(),
	}
	s.nextID++
	s.transmit(tx)
}

// transmit performs one attempt: emits the sent event, charges the radio,
// draws per-gateway received powers, and schedules the outcome resolution at
// the end of the frame's airtime.
func (s *Simulator) transmit(tx *transmission) {
	now := s.tl.Now()
	toa := airtime(tx.rateIdx)
	tx.start = now
	tx.end = now + toa
	tx.attempts++

	tx.rx = make([]float64, len(s.gateways))
	for i, gw := range s.gateways {
		tx.rx[i] = s.ch.rxPower(float64(tx.dev.TxPowerDbm), distanceM(tx.dev.X, tx.dev.Y, gw.X, gw.Y))
	}

	s.dispatch(stats.Event{
		Type:     stats.EventSent,
		TimeMs:   ms(now),
		PacketID: tx.id,
		DeviceID: tx.dev.ID,
		Class:    tx.class.String(),
		RateIdx:  tx.rateIdx,
	})

	tx.dev.txEnergy(toa, s.cfg.Energy.TxCurrentA, s.cfg.Energy.VoltageV)
	// The radio stays in standby until the receive window opens.
	tx.dev.standbyEnergy(ackDelay, s.cfg.Energy.StandbyCurrentA, s.cfg.Energy.VoltageV)
	s.active = append(s.active, tx)
	s.tl.Schedule(toa, func() { s.resolve(tx) })
}

// resolve decides, per gateway, the terminal outcome of one attempt.
func (s *Simulator) resolve(tx *transmission) {
	now := s.tl.Now()
	delivered := false
	var deliveringGw *Gateway

	for i, gw := range s.gateways {
		rx := tx.rx[i]
		snr := snrFromRxPower(rx)
		switch {
		case gw.transmitting(tx.start):
			s.dispatchLoss(stats.EventLostBusy, tx, rx, snr)
		case rx < sensitivityDbm[tx.rateIdx]:
			s.dispatchLoss(stats.EventLostUnderSensitivity, tx, rx, snr)
		case s.interfered(tx, i):
			s.dispatchLoss(stats.EventLostInterference, tx, rx, snr)
		default:
			path := gw.freePath(tx.start)
			if path < 0 {
				s.dispatchLoss(stats.EventLostNoReceivers, tx, rx, snr)
				continue
			}
			gw.busyUntil[path] = tx.end
			s.dispatch(stats.Event{
				Type:     stats.EventDelivered,
				TimeMs:   ms(now),
				PacketID: tx.id,
				DeviceID: tx.dev.ID,
				Class:    tx.class.String(),
				RateIdx:  tx.rateIdx,
				RSSI:     rx,
				SNR:      snr,
			})
			if !delivered {
				delivered = true
				deliveringGw = gw
			}
		}
	}

	s.pruneActive(tx, now)

	if s.cfg.AckMode() {
		s.followUp(tx, delivered, deliveringGw)
	}
}

// interfered reports whether another overlapping frame at the same rate
// setting is strong enough at the gateway to destroy this reception.
func (s *Simulator) interfered(tx *transmission, gwIdx int) bool {
	for _, other := range s.active {
		if other == tx || other.rateIdx != tx.rateIdx {
			continue
		}
		if other.start >= tx.end || other.end <= tx.start {
			continue
		}
		if other.rx[gwIdx] >= tx.rx[gwIdx]-captureMarginDB {
			return true
		}
	}
	return false
}

// followUp handles acknowledged-mode downlinks and retransmissions after an
// attempt resolved.
func (s *Simulator) followUp(tx *transmission, delivered bool, gw *Gateway) {
	now := s.tl.Now()
	if delivered {
		// The gateway answers in the first receive window; its transmitter
		// blocks uplink reception for the ack's airtime.
		ackToa := airtime(tx.rateIdx)
		ackEnd := now + ackDelay + ackToa
		if ackEnd > gw.txUntil {
			gw.txUntil = ackEnd
		}
		tx.dev.rxEnergy(ackToa, s.cfg.Energy.RxCurrentA, s.cfg.Energy.VoltageV)
		s.tl.Schedule(ackDelay+ackToa, func() {
			s.dispatch(stats.Event{
				Type:           stats.EventAcknowledgment,
				TimeMs:         ms(s.tl.Now()),
				PacketID:       tx.id,
				DeviceID:       tx.dev.ID,
				Success:        true,
				FirstAttemptMs: ms(tx.firstAttempt),
				Attempts:       tx.attempts,
			})
		})
		return
	}
	if tx.attempts < maxAttempts {
		backoff := retryBackoff + time.Duration(s.rng.Float64()*retryJitterS*float64(time.Second))
		s.tl.Schedule(backoff, func() { s.transmit(tx) })
		return
	}
	// Gave up; a failed acknowledgment is a defined no-op downstream.
	s.dispatch(stats.Event{
		Type:           stats.EventAcknowledgment,
		TimeMs:         ms(now),
		PacketID:       tx.id,
		DeviceID:       tx.dev.ID,
		Success:        false,
		FirstAttemptMs: ms(tx.firstAttempt),
		Attempts:       tx.attempts,
	})
}

// pruneActive drops tx and any frame that can no longer overlap new ones.
func (s *Simulator) pruneActive(tx *transmission, now time.Duration) {
	horizon := airtime(stats.NumRateSettings - 1)
	kept := s.active[:0]
	for _, other := range s.active {
		if other == tx {
			continue
		}
		if other.end+horizon < now {
			continue
		}
		kept = append(kept, other)
	}
	s.active = kept
}

// finishRun samples device settings and the energy total into the tracker.
func (s *Simulator) finishRun() {
	idle := s.cfg.Duration().Seconds() * s.cfg.Energy.SleepCurrentA * s.cfg.Energy.VoltageV
	total := 0.0
	for _, d := range s.devices {
		s.tracker.RecordDeviceSettings(d.RateIdx, d.TxPowerDbm)
		total += d.energyJ + idle
	}
	s.tracker.SetEnergyConsumption(total)
}

func (s *Simulator) dispatchLoss(kind stats.EventType, tx *transmission, rx, snr float64) {
	s.dispatch(stats.Event{
		Type:     kind,
		TimeMs:   ms(s.tl.Now()),
		PacketID: tx.id,
		DeviceID: tx.dev.ID,
		Class:    tx.class.String(),
		RateIdx:  tx.rateIdx,
		RSSI:     rx,
		SNR:      snr,
	})
}

// dispatch applies one event to the tracker and mirrors it to the event sink.
func (s *Simulator) dispatch(ev stats.Event) {
	// Apply only fails on unknown variants, which cannot be built here.
	_ = ev.Apply(s.tracker)
	if s.events != nil {
		_ = s.events.WriteEvent(ev)
	}
}

func expDuration(rng *rand.Rand, mean time.Duration) time.Duration {
	return time.Duration(rng.ExpFloat64() * float64(mean))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
