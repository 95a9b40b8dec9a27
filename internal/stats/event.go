package stats

import (
	"fmt"
	"time"
)

// EventType names one variant of the closed set of notifications the engine
// accepts.
type EventType string

const (
	EventSent                 EventType = "sent"
	EventDelivered            EventType = "delivered"
	EventLostInterference     EventType = "lost_interference"
	EventLostUnderSensitivity EventType = "lost_under_sensitivity"
	EventLostNoReceivers      EventType = "lost_no_receivers"
	EventLostBusy             EventType = "lost_busy"
	EventAcknowledgment       EventType = "acknowledgment"
)

// Event is one notification from the transmission/reception layer, in the
// shape it is logged and published. Fields irrelevant to a variant stay at
// their zero value.
type Event struct {
	Type     EventType `json:"type"`
	TimeMs   float64   `json:"time_ms"`
	PacketID PacketID  `json:"packet_id"`
	DeviceID DeviceID  `json:"device_id,omitempty"`
	Class    string    `json:"class,omitempty"`
	RateIdx  int       `json:"rate_index"`
	RSSI     float64   `json:"rssi,omitempty"`
	SNR      float64   `json:"snr,omitempty"`

	// Acknowledgment fields.
	Success        bool    `json:"success,omitempty"`
	FirstAttemptMs float64 `json:"first_attempt_ms,omitempty"`
	Attempts       int     `json:"attempts,omitempty"`
}

// Apply dispatches the event onto the tracker's ingress methods. Unknown
// variants are rejected so a corrupted event log fails loudly on replay.
func (e Event) Apply(t *Tracker) error {
	now := msDuration(e.TimeMs)
	switch e.Type {
	case EventSent:
		t.OnSent(e.PacketID, e.DeviceID, classFromString(e.Class), now)
	case EventDelivered:
		t.OnDelivered(e.PacketID, now, e.RSSI, e.SNR, e.RateIdx)
	case EventLostInterference:
		t.OnLostInterference(e.PacketID, e.RateIdx, e.RSSI, e.SNR)
	case EventLostUnderSensitivity:
		t.OnLostUnderSensitivity(e.PacketID, e.RateIdx, e.RSSI, e.SNR)
	case EventLostNoReceivers:
		t.OnLostNoReceivers(e.PacketID, e.RateIdx, e.RSSI, e.SNR)
	case EventLostBusy:
		t.OnLostBusy(e.PacketID, e.RateIdx, e.RSSI, e.SNR)
	case EventAcknowledgment:
		t.OnAcknowledgment(e.PacketID, msDuration(e.FirstAttemptMs), e.Attempts, e.Success, now)
	default:
		return fmt.Errorf("stats: unknown event type %q", e.Type)
	}
	return nil
}

func classFromString(s string) AppClass {
	if s == ClassPCC.String() {
		return ClassPCC
	}
	return ClassIMR
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
