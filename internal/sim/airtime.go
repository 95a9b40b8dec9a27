package sim

import (
	"math"
	"time"

	"lorastat-sim/internal/stats"
)

// toaSeconds is the uplink time-on-air per rate setting (SF7-SF12) for the
// study's 51-byte payload at 125 kHz bandwidth.
var toaSeconds = [stats.NumRateSettings]float64{
	0.112896, 0.205312, 0.369664, 0.698368, 1.47866, 2.62963,
}

// sensitivityDbm is the gateway sensitivity floor per rate setting.
var sensitivityDbm = [stats.NumRateSettings]float64{
	-130.0, -132.5, -135.0, -137.5, -140.0, -142.5,
}

const (
	bandwidthHz   = 125e3
	noiseFigureDB = 6

	// captureMarginDB is the co-rate power margin below which an overlapping
	// frame destroys the reception.
	captureMarginDB = 6
)

// airtime returns the time-on-air of one uplink at the given rate setting.
func airtime(rateIdx int) time.Duration {
	if rateIdx < 0 || rateIdx >= stats.NumRateSettings {
		rateIdx = stats.NumRateSettings - 1
	}
	return time.Duration(toaSeconds[rateIdx] * float64(time.Second))
}

// snrFromRxPower derives the signal-to-noise ratio from a received power.
func snrFromRxPower(rxDbm float64) float64 {
	return rxDbm + 174 - 10*math.Log10(bandwidthHz) - noiseFigureDB
}
