package snap

import (
	"math"
	"sync/atomic"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/util"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const DefaultStrength = 0.85

var (
	ErrInvalidSnapResult = errors.New("snap result is not finite")
	ErrInvalidStrength   = errors.New("snap strength must be within [0,1]")
)

// Result is a corrected position and the unit tangent of the road segment it was pulled to.
type Result struct {
	Point     orb.Point
	Direction orb.Point
	// Snapped is false when no roads were loaded and Point is the query itself.
	Snapped bool
	// Nearest is the closest point on the road before blending.
	Nearest orb.Point
	// Polyline and Segment locate the winning segment in the road set.
	Polyline int
	Segment  int
}

type roadSet struct {
	polylines []orb.LineString
}

// Snapper finds the nearest road segment in projected space. Roads are swapped atomically, a
// concurrent SnapPosition sees either the old or the new set.
type Snapper struct {
	roads    atomic.Pointer[roadSet]
	strength atomic.Uint64
}

type Option func(*Snapper) error

func WithStrength(strength float64) Option {
	return func(s *Snapper) error {
		return s.SetSnapStrength(strength)
	}
}

func NewSnapper(opts ...Option) (*Snapper, error) {
	s := &Snapper{}
	s.strength.Store(math.Float64bits(DefaultStrength))
	s.roads.Store(&roadSet{})
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Snapper) SetSnapStrength(strength float64) error {
	if math.IsNaN(strength) || strength < 0 || strength > 1 {
		return errors.Wrapf(ErrInvalidStrength, "got %v", strength)
	}
	s.strength.Store(math.Float64bits(strength))
	return nil
}

func (s *Snapper) SnapStrength() float64 {
	return math.Float64frombits(s.strength.Load())
}

// SetRoads replaces the whole road set. The slice is kept as is and must not be modified after.
func (s *Snapper) SetRoads(polylines []orb.LineString) {
	s.roads.Store(&roadSet{polylines: polylines})
}

// HasRoads reports whether at least one segment is loaded.
func (s *Snapper) HasRoads() bool {
	for _, ls := range s.roads.Load().polylines {
		if len(ls) >= 2 {
			return true
		}
	}
	return false
}

func (s *Snapper) Roads() []orb.LineString {
	return s.roads.Load().polylines
}

// SnapPosition pulls x,y toward the closest point of the closest segment. Ties keep the first
// segment in polyline then point order; that winner is stable, not geometrically preferred.
func (s *Snapper) SnapPosition(x, y float64) (Result, error) {
	p := orb.Point{x, y}
	rs := s.roads.Load()

	best := math.Inf(1)
	found, invalid := false, false
	var res Result
	for i, ls := range rs.polylines {
		for j := 0; j+1 < len(ls); j++ {
			a, b := ls[j], ls[j+1]
			candidate := NearestPointOnSegment(a, b, p)
			d := distSquared(candidate, p)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				invalid = true
				continue
			}
			if d < best {
				best = d
				found = true
				res.Nearest = candidate
				res.Direction = unitTangent(a, b)
				res.Polyline = i
				res.Segment = j
			}
		}
	}

	if !found && invalid {
		return Result{}, errors.Wrapf(ErrInvalidSnapResult, "no finite segment near %v,%v", x, y)
	}
	if !found {
		return Result{Point: p, Direction: orb.Point{1, 0}, Nearest: p, Polyline: -1, Segment: -1}, nil
	}

	k := s.SnapStrength()
	res.Point = orb.Point{
		(1-k)*x + k*res.Nearest[0],
		(1-k)*y + k*res.Nearest[1],
	}
	res.Snapped = true
	if !geo.IsFinite(res.Point[0], res.Point[1], res.Direction[0], res.Direction[1]) {
		return Result{}, errors.Wrapf(ErrInvalidSnapResult, "polyline %d segment %d", res.Polyline, res.Segment)
	}
	return res, nil
}

// NearestPointOnSegment clamps the projection of p onto ab to the segment. A zero length segment
// returns a.
func NearestPointOnSegment(a, b, p orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
		t = util.Clamp(t, 0, 1)
	}
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}

func unitTangent(a, b orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return orb.Point{1, 0}
	}
	return orb.Point{dx / l, dy / l}
}

func distSquared(a, b orb.Point) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return dx*dx + dy*dy
}
