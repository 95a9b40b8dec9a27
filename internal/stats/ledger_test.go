package stats

import (
	"testing"
	"time"
)

func TestRecordSentRetransmissionKeepsFirstTimestamp(t *testing.T) {
	l := NewLedger()
	if !l.RecordSent(5, 1, ClassIMR, 100*time.Millisecond) {
		t.Fatal("first RecordSent should insert")
	}
	if l.RecordSent(5, 1, ClassIMR, 900*time.Millisecond) {
		t.Fatal("second RecordSent for same id should be a retransmission")
	}
	rec, ok := l.Lookup(5)
	if !ok {
		t.Fatal("record missing after insert")
	}
	if rec.SentAt != 100*time.Millisecond {
		t.Errorf("SentAt = %v, want first attempt's 100ms", rec.SentAt)
	}
	if got := l.Retransmissions(); got != 1 {
		t.Errorf("Retransmissions = %d, want 1", got)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	l := NewLedger()
	l.RecordSent(7, 2, ClassPCC, 0)

	if res := l.Finalize(7, StatusDelivered, 50*time.Millisecond); res != FinalizeApplied {
		t.Fatalf("first Finalize = %v, want FinalizeApplied", res)
	}
	if res := l.Finalize(7, StatusExpired, unset); res != FinalizeAlreadyFinal {
		t.Fatalf("second Finalize = %v, want FinalizeAlreadyFinal", res)
	}
	rec, _ := l.Lookup(7)
	if rec.Status != StatusDelivered {
		t.Errorf("Status = %v, want delivered after idempotent second finalize", rec.Status)
	}
	if rec.Delay != 50*time.Millisecond {
		t.Errorf("Delay = %v, want unchanged 50ms", rec.Delay)
	}
}

func TestFinalizeUnknownPacket(t *testing.T) {
	l := NewLedger()
	if res := l.Finalize(99, StatusDelivered, time.Second); res != FinalizeUnknown {
		t.Errorf("Finalize on untracked id = %v, want FinalizeUnknown", res)
	}
}

func TestExpiredDoesNotStoreDelay(t *testing.T) {
	l := NewLedger()
	l.RecordSent(1, 1, ClassIMR, 0)
	l.Finalize(1, StatusExpired, unset)
	rec, _ := l.Lookup(1)
	if rec.Delay >= 0 {
		t.Errorf("Delay = %v, want unset for an expired packet", rec.Delay)
	}
}

func TestResetDiscardsEverything(t *testing.T) {
	l := NewLedger()
	l.RecordSent(1, 1, ClassIMR, 0)
	l.RecordSent(1, 1, ClassIMR, time.Second)
	l.Reset()
	if l.Len() != 0 || l.Retransmissions() != 0 {
		t.Errorf("after Reset: len=%d retx=%d, want 0/0", l.Len(), l.Retransmissions())
	}
}
