// Packet lifecycle records and the enumerations used throughout the engine.
package stats

import "time"

// PacketID is the opaque identifier the transport layer assigns at send time.
type PacketID uint64

// DeviceID identifies a sending end device.
type DeviceID uint32

// AppClass tags a packet with the application that generated it. Each class
// carries its own delivery deadline and its own counters.
type AppClass int

const (
	// ClassIMR is the latency-sensitive metering-report application.
	ClassIMR AppClass = iota
	// ClassPCC is the billing-report application.
	ClassPCC

	numClasses
)

func (c AppClass) String() string {
	switch c {
	case ClassIMR:
		return "imr"
	case ClassPCC:
		return "pcc"
	}
	return "unknown"
}

// Status is the lifecycle state of a tracked packet. The delay-bearing
// transition is Sent -> Delivered or Sent -> Expired; loss observations are
// tallied in aggregate counters and never stored on the record.
type Status int

const (
	StatusSent Status = iota
	StatusDelivered
	StatusExpired
	StatusLostInterference
	StatusLostUnderSensitivity
	StatusLostNoReceivers
	StatusLostBusy
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusExpired:
		return "expired"
	case StatusLostInterference:
		return "lost_interference"
	case StatusLostUnderSensitivity:
		return "lost_under_sensitivity"
	case StatusLostNoReceivers:
		return "lost_no_receivers"
	case StatusLostBusy:
		return "lost_busy"
	}
	return "unknown"
}

// LossCause partitions receiver-side losses.
type LossCause int

const (
	LossInterference LossCause = iota
	LossUnderSensitivity
	LossNoReceivers
	LossBusy

	numLossCauses
)

// NumRateSettings is the number of rate settings (spreading factors SF7-SF12)
// loss statistics are partitioned by.
const NumRateSettings = 6

// NumTxPowerLevels is the number of transmit-power levels (1-14 dBm) the
// power distribution is partitioned by.
const NumTxPowerLevels = 14

// unset marks a delay that has not been recorded yet.
const unset = time.Duration(-1)

// PacketRecord tracks one unique packet from first transmission to its
// terminal outcome.
type PacketRecord struct {
	ID       PacketID
	DeviceID DeviceID
	Class    AppClass

	// SentAt is the virtual time of the first transmission attempt.
	// Retransmissions never overwrite it.
	SentAt time.Duration

	// Delay is the latency to the first successful reception. Negative until
	// the packet is delivered; never overwritten once set.
	Delay time.Duration

	// AckDelay is the latency from the first attempt to the confirmed
	// acknowledgment. Independent of Delay; negative until set.
	AckDelay time.Duration

	Status Status
}

// Finalized reports whether the record has taken its terminal transition.
func (r *PacketRecord) Finalized() bool { return r.Status != StatusSent }

// Acknowledged reports whether a confirmed delivery was already recorded.
func (r *PacketRecord) Acknowledged() bool { return r.AckDelay >= 0 }
