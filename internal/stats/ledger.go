package stats

import "time"

// FinalizeResult reports what Finalize did with a terminal event.
type FinalizeResult int

const (
	// FinalizeApplied means the record took its terminal transition now.
	FinalizeApplied FinalizeResult = iota
	// FinalizeAlreadyFinal means the record was finalized earlier; the event
	// is an idempotent no-op for status and delay.
	FinalizeAlreadyFinal
	// FinalizeUnknown means no record exists for the id.
	FinalizeUnknown
)

// Ledger is the authoritative mapping from in-flight packet identity to its
// lifecycle record. It is a pure store: counter bookkeeping beyond the
// records' own fields is the caller's job.
type Ledger struct {
	records         map[PacketID]*PacketRecord
	retransmissions int
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[PacketID]*PacketRecord)}
}

// RecordSent inserts a new record for id, or counts a retransmission when the
// id is already tracked. It returns true only for a first transmission; a
// retransmission leaves the existing record untouched.
func (l *Ledger) RecordSent(id PacketID, device DeviceID, class AppClass, now time.Duration) bool {
	if _, ok := l.records[id]; ok {
		l.retransmissions++
		return false
	}
	l.records[id] = &PacketRecord{
		ID:       id,
		DeviceID: device,
		Class:    class,
		SentAt:   now,
		Delay:    unset,
		AckDelay: unset,
		Status:   StatusSent,
	}
	return true
}

// Lookup returns the record for id, if tracked.
func (l *Ledger) Lookup(id PacketID) (*PacketRecord, bool) {
	r, ok := l.records[id]
	return r, ok
}

// Finalize writes the terminal status for id. Only records still in the Sent
// state transition; repeated terminal events from other receivers are
// absorbed without altering status or delay. The delay is stored only for a
// delivery; pass a negative delay otherwise.
func (l *Ledger) Finalize(id PacketID, status Status, delay time.Duration) FinalizeResult {
	r, ok := l.records[id]
	if !ok {
		return FinalizeUnknown
	}
	if r.Finalized() {
		return FinalizeAlreadyFinal
	}
	r.Status = status
	if status == StatusDelivered && delay >= 0 {
		r.Delay = delay
	}
	return FinalizeApplied
}

// Retransmissions returns the number of duplicate send notifications seen.
func (l *Ledger) Retransmissions() int { return l.retransmissions }

// Len returns the number of tracked packets.
func (l *Ledger) Len() int { return len(l.records) }

// Reset discards all records and counters at a run boundary.
func (l *Ledger) Reset() {
	l.records = make(map[PacketID]*PacketRecord)
	l.retransmissions = 0
}
