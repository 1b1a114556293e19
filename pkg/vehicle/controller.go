package vehicle

import (
	"math"
	"sync"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/snap"
	"lintang/racemap/pkg/terrain"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"github.com/uber/h3-go/v4"
)

const (
	DefaultForwardSpeed = 22.0
	DefaultReverseSpeed = -12.0
	DefaultTurnRate     = 0.04
)

type Controls struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
}

type Options struct {
	ForwardSpeed float64 // projected meters per step
	ReverseSpeed float64
	TurnRate     float64 // radians per step
}

func DefaultOptions() Options {
	return Options{
		ForwardSpeed: DefaultForwardSpeed,
		ReverseSpeed: DefaultReverseSpeed,
		TurnRate:     DefaultTurnRate,
	}
}

type Outcome int

const (
	// Idle: no roads loaded, the vehicle stays where it is.
	Idle Outcome = iota
	Moved
	// Restored: the step produced an unusable position and the last good one was kept.
	Restored
)

func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Moved:
		return "moved"
	case Restored:
		return "restored"
	}
	return "unknown"
}

// State is a snapshot of the vehicle. Heading is radians counter clockwise from east in
// projected space.
type State struct {
	Lon, Lat float64
	X, Y     float64
	Z        float64
	Heading  float64
	Speed    float64
	Cell     h3.Cell
}

type snapper interface {
	HasRoads() bool
	SnapPosition(x, y float64) (snap.Result, error)
}

// Controller drives one vehicle over the road set of a Snapper.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	snapper snapper
	terrain terrain.ElevationSource

	state            State
	lastLon, lastLat float64
}

func NewController(s snapper, elevation terrain.ElevationSource, lon, lat float64, opts Options) *Controller {
	if elevation == nil {
		elevation = terrain.Flat
	}
	c := &Controller{opts: opts, snapper: s, terrain: elevation}
	c.place(lon, lat)
	return c
}

func (c *Controller) place(lon, lat float64) {
	x, y := geo.GeoToProjected(lon, lat)
	c.state = State{Lon: lon, Lat: lat, X: x, Y: y, Cell: geo.Cell(lon, lat)}
	c.lastLon, c.lastLat = lon, lat
}

// Reset teleports the vehicle and clears heading and speed.
func (c *Controller) Reset(lon, lat float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.place(lon, lat)
	return c.state
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Step applies one tick of input: move, snap to the nearest road, follow terrain.
func (c *Controller) Step(ctl Controls) (State, Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.snapper.HasRoads() {
		return c.state, Idle
	}

	speed := 0.0
	switch {
	case ctl.Forward:
		speed = c.opts.ForwardSpeed
	case ctl.Backward:
		speed = c.opts.ReverseSpeed
	}
	heading := c.state.Heading
	if ctl.Left {
		heading += c.opts.TurnRate
	}
	if ctl.Right {
		heading -= c.opts.TurnRate
	}

	x := c.state.X + math.Cos(heading)*speed
	y := c.state.Y + math.Sin(heading)*speed
	lon, lat := geo.ProjectedToGeo(x, y)
	if !geo.IsFinite(lon, lat) {
		return c.restore("invalid move"), Restored
	}

	res, err := c.snapper.SnapPosition(x, y)
	if err != nil {
		return c.restore(err.Error()), Restored
	}

	lon, lat = geo.ProjectedToGeo(res.Point[0], res.Point[1])
	if !geo.IsFinite(lon, lat) {
		return c.restore("snapped lon/lat invalid"), Restored
	}
	x, y = geo.GeoToProjected(lon, lat)
	if !geo.IsFinite(x, y) {
		return c.restore("mercator conversion invalid"), Restored
	}

	if res.Snapped {
		heading = alignHeading(heading, res.Direction)
	}

	z := c.terrain.Elevation(lon, lat)
	if !geo.IsFinite(z) {
		z = 0
	}

	c.state = State{
		Lon: lon, Lat: lat,
		X: x, Y: y, Z: z,
		Heading: heading,
		Speed:   speed,
		Cell:    geo.Cell(lon, lat),
	}
	c.lastLon, c.lastLat = lon, lat
	return c.state, Moved
}

// alignHeading returns the angle of the road tangent, flipped when it points against heading.
func alignHeading(heading float64, dir orb.Point) float64 {
	if dir[0]*math.Cos(heading)+dir[1]*math.Sin(heading) < 0 {
		dir = orb.Point{-dir[0], -dir[1]}
	}
	return math.Atan2(dir[1], dir[0])
}

func (c *Controller) restore(reason string) State {
	log.WithFields(log.Fields{"lon": c.lastLon, "lat": c.lastLat}).Warnf("%s, keeping last position", reason)
	x, y := geo.GeoToProjected(c.lastLon, c.lastLat)
	c.state.Lon, c.state.Lat = c.lastLon, c.lastLat
	c.state.X, c.state.Y = x, y
	c.state.Speed = 0
	c.state.Cell = geo.Cell(c.lastLon, c.lastLat)
	return c.state
}
