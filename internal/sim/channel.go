package sim

import (
	"math"
	"math/rand"

	"lorastat-sim/internal/config"
)

// channelModel is a log-distance path-loss model with normal shadowing.
type channelModel struct {
	exponent float64
	refLoss  float64
	sigma    float64
	rng      *rand.Rand
}

func newChannelModel(cfg config.Channel, rng *rand.Rand) *channelModel {
	return &channelModel{
		exponent: cfg.PathLossExponent,
		refLoss:  cfg.ReferenceLossDB,
		sigma:    cfg.ShadowingSigmaDB,
		rng:      rng,
	}
}

// meanRxPower returns the received power without the shadowing component,
// used for deterministic rate allocation.
func (c *channelModel) meanRxPower(txDbm, distM float64) float64 {
	if distM < 1 {
		distM = 1
	}
	return txDbm - c.refLoss - 10*c.exponent*math.Log10(distM)
}

// rxPower draws one received-power sample including shadowing.
func (c *channelModel) rxPower(txDbm, distM float64) float64 {
	return c.meanRxPower(txDbm, distM) + c.rng.NormFloat64()*c.sigma
}

func distanceM(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}
