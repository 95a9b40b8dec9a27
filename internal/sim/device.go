package sim

import (
	"time"

	"lorastat-sim/internal/stats"
)

// defaultTxPowerDbm is the transmit power every device starts with.
const defaultTxPowerDbm = 14

// Device holds runtime state for one simulated end device.
type Device struct {
	ID         stats.DeviceID
	X, Y       float64
	RateIdx    int
	TxPowerDbm int

	// energyJ accumulates the radio energy spent on transmissions, the
	// standby wait before each receive window, and acknowledgment receive
	// windows. The sleep baseline is added at run end.
	energyJ float64
}

// txEnergy charges the device for one transmission of the given airtime.
func (d *Device) txEnergy(toa time.Duration, currentA, voltageV float64) {
	d.energyJ += toa.Seconds() * currentA * voltageV
}

// standbyEnergy charges the device for the idle-radio wait between the end
// of a transmission and its receive window opening.
func (d *Device) standbyEnergy(wait time.Duration, currentA, voltageV float64) {
	d.energyJ += wait.Seconds() * currentA * voltageV
}

// rxEnergy charges the device for one receive window.
func (d *Device) rxEnergy(window time.Duration, currentA, voltageV float64) {
	d.energyJ += window.Seconds() * currentA * voltageV
}

// Gateway holds one receiver with a fixed number of parallel receive paths
// and an exclusive downlink transmitter.
type Gateway struct {
	ID   int
	X, Y float64

	// busyUntil holds each receive path's occupation end time.
	busyUntil []time.Duration
	// txUntil is the end of the current downlink transmission, during which
	// no uplink can be received.
	txUntil time.Duration
}

// receivePaths matches the reference gateway design.
const receivePaths = 8

func newGateway(id int, x, y float64) *Gateway {
	return &Gateway{ID: id, X: x, Y: y, busyUntil: make([]time.Duration, receivePaths)}
}

// freePath returns the index of a receive path idle since before start, or
// -1 when every chain is occupied.
func (g *Gateway) freePath(start time.Duration) int {
	for i, until := range g.busyUntil {
		if until <= start {
			return i
		}
	}
	return -1
}

// transmitting reports whether the downlink transmitter overlaps a reception
// that started at start.
func (g *Gateway) transmitting(start time.Duration) bool {
	return g.txUntil > start
}
