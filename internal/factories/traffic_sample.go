package factories

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

const (
	minCongestion  = 1
	maxCongestion  = 10
	freeFlowSpeed  = 60.0 // km/h at congestion 0
	speedPerLevel  = 5.0
	speedNoise     = 10.0
	minVehicles    = 100
	vehicleSpread  = 900
	coordinateSpan = 0.1 // jitter is ±half of this, in degrees
)

// NewRand returns a generator seeded with seed, or with the clock when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// TrafficSampleFactory produces simulated traffic samples around a base
// coordinate. It owns its random source; calls are safe for concurrent use.
type TrafficSampleFactory struct {
	mu   sync.Mutex
	rng  *rand.Rand
	base models.Location
}

func NewTrafficSampleFactory(rng *rand.Rand, base models.Location) *TrafficSampleFactory {
	return &TrafficSampleFactory{rng: rng, base: base}
}

// CreateTrafficSample draws one sample for location at ts. Average speed is
// derived from the congestion level so the two always move in opposite
// directions. It has no side effects and cannot fail; the returned sample has
// no ID.
func (tf *TrafficSampleFactory) CreateTrafficSample(location string, ts time.Time) *models.TrafficSample {
	tf.mu.Lock()
	defer tf.mu.Unlock()

	congestion := minCongestion + tf.rng.Intn(maxCongestion-minCongestion+1)
	speed := freeFlowSpeed - float64(congestion)*speedPerLevel + tf.rng.Float64()*speedNoise
	vehicles := minVehicles + tf.rng.Intn(vehicleSpread)
	point := tf.base.Jitter(
		(tf.rng.Float64()-0.5)*coordinateSpan,
		(tf.rng.Float64()-0.5)*coordinateSpan,
	)

	return &models.TrafficSample{
		Location:        location,
		CongestionLevel: congestion,
		AverageSpeed:    speed,
		VehicleCount:    vehicles,
		Timestamp:       ts,
		Latitude:        point.Lat,
		Longitude:       point.Lon,
	}
}

// PastTimestamp returns now minus a uniform offset in [0, window).
func (tf *TrafficSampleFactory) PastTimestamp(now time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return now
	}
	tf.mu.Lock()
	offset := time.Duration(tf.rng.Int63n(int64(window)))
	tf.mu.Unlock()
	return now.Add(-offset)
}

// Base returns the coordinate samples are jittered around.
func (tf *TrafficSampleFactory) Base() models.Location {
	return tf.base
}
