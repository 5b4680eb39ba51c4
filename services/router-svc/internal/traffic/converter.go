package traffic

import (
	"fmt"
	"math"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"
)

// =============================================================================
// Flow-to-Time Conversion
// =============================================================================
//
// Converts a traffic volume observed on a road segment into an estimated
// travel time for that segment. The underlying model is a quadratic
// flow-speed relation calibrated for urban arterials:
//
//	flow = -a*s^2 + b*s
//
// where s is the travel speed in km/h. Inverting for a given flow yields two
// speed roots; this implementation takes the LARGER root, so that speed
// decreases monotonically from the free-flow limit as volume grows. At the
// free-flow threshold the larger root equals the speed limit, which makes the
// free-flow branch and the congested branch meet without a discontinuity.
//
// Per-segment travel time is:
//
//	seconds = distance / speed + fixed delay
//
// where the fixed delay models the average intersection stop.
//
// Degradation: when the observed volume exceeds the vertex of the parabola
// (discriminant below zero) or the computed speed falls below the crawl
// floor, the speed is clamped to the crawl floor and the edge is flagged as
// degraded. Degraded edges stay usable; callers surface the flag as a
// warning instead of failing the build.
// =============================================================================

// Default model coefficients, calibrated for a 60 km/h urban network.
const (
	// DefaultCoeffA is the quadratic coefficient of the flow-speed relation.
	DefaultCoeffA = 1.4648375

	// DefaultCoeffB is the linear coefficient of the flow-speed relation.
	DefaultCoeffB = 93.75

	// DefaultSpeedLimitKmh is the free-flow travel speed.
	DefaultSpeedLimitKmh = 60.0

	// DefaultFreeFlowVolume is the highest hourly volume at which segments
	// are still traversed at the speed limit.
	DefaultFreeFlowVolume = 351.0

	// DefaultFixedDelaySeconds is the average controlled-intersection delay
	// added to every segment.
	DefaultFixedDelaySeconds = 30.0

	// DefaultMinCrawlSpeedKmh is the floor below which speeds are clamped.
	DefaultMinCrawlSpeedKmh = 5.0
)

// Converter turns traffic volumes into per-segment travel times.
type Converter struct {
	coeffA         float64
	coeffB         float64
	speedLimitKmh  float64
	freeFlowVolume float64
	fixedDelaySec  float64
	crawlSpeedKmh  float64
}

// Config holds converter parameters. Zero values fall back to defaults.
type Config struct {
	CoeffA            float64
	CoeffB            float64
	SpeedLimitKmh     float64
	FreeFlowVolume    float64
	FixedDelaySeconds float64
	MinCrawlSpeedKmh  float64
}

// NewConverter creates a converter with the given parameters.
func NewConverter(cfg Config) *Converter {
	c := &Converter{
		coeffA:         cfg.CoeffA,
		coeffB:         cfg.CoeffB,
		speedLimitKmh:  cfg.SpeedLimitKmh,
		freeFlowVolume: cfg.FreeFlowVolume,
		fixedDelaySec:  cfg.FixedDelaySeconds,
		crawlSpeedKmh:  cfg.MinCrawlSpeedKmh,
	}

	if c.coeffA <= 0 {
		c.coeffA = DefaultCoeffA
	}
	if c.coeffB <= 0 {
		c.coeffB = DefaultCoeffB
	}
	if c.speedLimitKmh <= 0 {
		c.speedLimitKmh = DefaultSpeedLimitKmh
	}
	if c.freeFlowVolume <= 0 {
		c.freeFlowVolume = DefaultFreeFlowVolume
	}
	if c.fixedDelaySec < 0 {
		c.fixedDelaySec = DefaultFixedDelaySeconds
	}
	if c.crawlSpeedKmh <= 0 {
		c.crawlSpeedKmh = DefaultMinCrawlSpeedKmh
	}

	return c
}

// SpeedLimitKmh returns the free-flow speed. Edge speeds never exceed it,
// which keeps straight-line travel time estimates admissible.
func (c *Converter) SpeedLimitKmh() float64 {
	return c.speedLimitKmh
}

// Speed returns the travel speed in km/h for an hourly volume, and whether
// the speed was clamped to the crawl floor.
func (c *Converter) Speed(volumeVehHour float64) (float64, bool) {
	if volumeVehHour <= c.freeFlowVolume {
		return c.speedLimitKmh, false
	}

	// Larger root of a*s^2 - b*s + volume = 0
	disc := c.coeffB*c.coeffB - 4*c.coeffA*volumeVehHour
	if disc < 0 {
		// Volume beyond the model's capacity
		return c.crawlSpeedKmh, true
	}

	speed := (c.coeffB + math.Sqrt(disc)) / (2 * c.coeffA)
	if speed > c.speedLimitKmh {
		speed = c.speedLimitKmh
	}
	if speed < c.crawlSpeedKmh {
		return c.crawlSpeedKmh, true
	}

	return speed, false
}

// TravelTime returns the estimated travel time in seconds for a segment of
// the given length under the given hourly volume. The second return value
// reports whether the segment was degraded to crawl speed.
//
// Negative volumes are rejected; a zero-length segment still incurs the
// fixed intersection delay.
func (c *Converter) TravelTime(volumeVehHour, distanceM float64) (float64, bool, error) {
	if volumeVehHour < 0 {
		return 0, false, apperror.New(apperror.CodeInvalidVolume,
			fmt.Sprintf("traffic volume must be non-negative, got %.2f", volumeVehHour))
	}
	if distanceM < 0 {
		return 0, false, apperror.New(apperror.CodeNegativeDistance,
			fmt.Sprintf("segment length must be non-negative, got %.2f", distanceM))
	}

	speed, degraded := c.Speed(volumeVehHour)
	seconds := distanceM/domain.KmhToMs(speed) + c.fixedDelaySec

	return seconds, degraded, nil
}
