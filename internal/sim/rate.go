package sim

import "lorastat-sim/internal/stats"

// allocateRate picks the most aggressive rate setting whose mean received
// power at the closest gateway still clears the sensitivity floor. Devices
// out of range of every setting are parked on the most robust one.
func allocateRate(ch *channelModel, d *Device, gateways []*Gateway) int {
	best := 1e9
	for _, gw := range gateways {
		if dist := distanceM(d.X, d.Y, gw.X, gw.Y); dist < best {
			best = dist
		}
	}
	mean := ch.meanRxPower(float64(d.TxPowerDbm), best)
	for idx := 0; idx < stats.NumRateSettings; idx++ {
		if mean >= sensitivityDbm[idx] {
			return idx
		}
	}
	return stats.NumRateSettings - 1
}
