package spatialindex

import (
	"math"
	"sort"
	"sync/atomic"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/snap"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// bounding box padding in projected meters, keeps straight horizontal/vertical roads non empty
const tol = 0.5

type RoadRect struct {
	rect     rtreego.Rect
	Index    int
	Polyline orb.LineString
}

func (r *RoadRect) Bounds() rtreego.Rect {
	return r.rect
}

type Nearby struct {
	Index    int
	Polyline orb.LineString
	Dist     float64 // meters in projected space
	Nearest  orb.Point
}

type tree struct {
	rt    *rtreego.Rtree
	count int
}

// Index is an r-tree over road polylines. It is rebuilt on every SetRoads.
type Index struct {
	t atomic.Pointer[tree]
}

func NewIndex() *Index {
	idx := &Index{}
	idx.t.Store(&tree{rt: rtreego.NewTree(2, 25, 50)})
	return idx
}

func (idx *Index) SetRoads(polylines []orb.LineString) {
	objs := make([]rtreego.Spatial, 0, len(polylines))
	for i, ls := range polylines {
		if len(ls) < 2 {
			continue
		}
		rect, ok := boundsRect(ls)
		if !ok {
			continue
		}
		objs = append(objs, &RoadRect{rect: rect, Index: i, Polyline: ls})
	}
	// 2 dimension, 25 min entries dan 50 max entries
	idx.t.Store(&tree{rt: rtreego.NewTree(2, 25, 50, objs...), count: len(objs)})
}

func (idx *Index) Len() int {
	return idx.t.Load().count
}

func boundsRect(ls orb.LineString) (rtreego.Rect, bool) {
	b := ls.Bound()
	if !geo.IsFinite(b.Min[0], b.Min[1], b.Max[0], b.Max[1]) {
		return rtreego.Rect{}, false
	}
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.Min[0] - tol, b.Min[1] - tol},
		rtreego.Point{b.Max[0] + tol, b.Max[1] + tol},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}

// Nearest returns up to k polylines closest to x,y, closest first. The closest 4k bounding boxes
// give an upper bound for the k-th exact distance, every road within that bound is then ranked.
func (idx *Index) Nearest(x, y float64, k int) []Nearby {
	t := idx.t.Load()
	if k <= 0 || t.count == 0 || !geo.IsFinite(x, y) {
		return nil
	}
	p := orb.Point{x, y}
	candidates := t.rt.NearestNeighbors(min(t.count, k*4), rtreego.Point{x, y})
	ranked := rank(candidates, p, k)
	if len(candidates) == t.count || len(ranked) < k {
		return ranked
	}
	return t.within(p, math.Max(ranked[k-1].Dist, tol), k)
}

// Within returns the polylines at most radius meters from x,y, closest first.
func (idx *Index) Within(x, y, radius float64) []Nearby {
	t := idx.t.Load()
	if t.count == 0 || !geo.IsFinite(x, y, radius) || radius <= 0 {
		return nil
	}
	return t.within(orb.Point{x, y}, radius, t.count)
}

func (t *tree) within(p orb.Point, radius float64, k int) []Nearby {
	rect, err := rtreego.NewRectFromPoints(rtreego.Point{p[0] - radius, p[1] - radius}, rtreego.Point{p[0] + radius, p[1] + radius})
	if err != nil {
		return nil
	}
	hits := t.rt.SearchIntersect(rect)
	out := rank(hits, p, len(hits))
	for i, n := range out {
		if n.Dist > radius {
			out = out[:i]
			break
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func rank(objs []rtreego.Spatial, p orb.Point, k int) []Nearby {
	out := make([]Nearby, 0, len(objs))
	for _, o := range objs {
		rr, ok := o.(*RoadRect)
		if !ok || rr == nil {
			continue
		}
		nearest, d := distanceToLine(rr.Polyline, p)
		out = append(out, Nearby{Index: rr.Index, Polyline: rr.Polyline, Dist: d, Nearest: nearest})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dist != out[j].Dist {
			return out[i].Dist < out[j].Dist
		}
		return out[i].Index < out[j].Index
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func distanceToLine(ls orb.LineString, p orb.Point) (orb.Point, float64) {
	best := math.Inf(1)
	var bestPt orb.Point
	for i := 0; i+1 < len(ls); i++ {
		q := snap.NearestPointOnSegment(ls[i], ls[i+1], p)
		d := math.Hypot(q[0]-p[0], q[1]-p[1])
		if d < best {
			best, bestPt = d, q
		}
	}
	return bestPt, best
}
