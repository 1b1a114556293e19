package terrain

import (
	"math"
	"strconv"
	"sync"
)

const DefaultSmoothFactor = 0.3

// ElevationSource returns the terrain height in meters at lon/lat. NaN or Inf means unknown.
type ElevationSource interface {
	Elevation(lon, lat float64) float64
}

type ElevationFunc func(lon, lat float64) float64

func (f ElevationFunc) Elevation(lon, lat float64) float64 {
	return f(lon, lat)
}

// Flat is sea level everywhere.
var Flat = ElevationFunc(func(lon, lat float64) float64 { return 0 })

// Smoother damps elevation jumps per position. The first sample at a position is returned raw,
// later ones move toward the new raw value by factor.
type Smoother struct {
	source ElevationSource
	factor float64

	mu   sync.Mutex
	last map[string]float64
}

func NewSmoother(source ElevationSource, factor float64) *Smoother {
	if math.IsNaN(factor) || factor <= 0 || factor > 1 {
		factor = DefaultSmoothFactor
	}
	return &Smoother{
		source: source,
		factor: factor,
		last:   make(map[string]float64),
	}
}

func Key(lon, lat float64) string {
	return strconv.FormatFloat(lon, 'f', 6, 64) + "," + strconv.FormatFloat(lat, 'f', 6, 64)
}

func (s *Smoother) Elevation(lon, lat float64) float64 {
	h := s.source.Elevation(lon, lat)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		h = 0
	}
	key := Key(lon, lat)

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.last[key]
	if !ok {
		s.last[key] = h
		return h
	}
	smooth := prev + (h-prev)*s.factor
	s.last[key] = smooth
	return smooth
}

// Reset forgets every remembered height.
func (s *Smoother) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = make(map[string]float64)
}

func (s *Smoother) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}
